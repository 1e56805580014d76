// Package tui drives the registration form from a terminal. Prompts go
// through a PromptDriver so the flow can be scripted in tests; the default
// driver uses survey.
package tui
