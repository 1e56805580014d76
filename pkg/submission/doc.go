// Package submission posts a registration to the submission endpoint and
// handles the printable document it answers with.
//
// A Controller moves Idle -> Sending -> Succeeded or Failed on every attempt.
// Only a success resets the form; rejections and transport failures leave
// every entered value in place so the user can correct and resubmit.
package submission
