/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"github.com/AlecAivazis/survey/v2"
)

// terminalPrompt asks the players through the shared terminal.
type terminalPrompt struct{}

func (terminalPrompt) Input(message string) (string, error) {
	var answer string

	err := survey.AskOne(&survey.Input{Message: message}, &answer)

	return answer, err
}

func (terminalPrompt) Select(message string, options []string) (string, error) {
	var answer string

	err := survey.AskOne(&survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 15,
	}, &answer)

	return answer, err
}

func (terminalPrompt) Confirm(message string, def bool) (bool, error) {
	answer := def

	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer)

	return answer, err
}
