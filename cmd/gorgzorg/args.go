package main

import "strings"

// argumentList consumes command-line switches in any order. Unlike the flag
// package it supports a switch whose value is optional (-z [ip]), which is
// why the CLI does not use flag.Parse.
type argumentList struct {
	args []string
}

func newArgumentList(args []string) *argumentList {
	return &argumentList{args: append([]string(nil), args...)}
}

// getSwitch consumes a boolean switch and reports whether it was present.
func (a *argumentList) getSwitch(option string) bool {
	for i, arg := range a.args {
		if arg == option {
			a.args = append(a.args[:i], a.args[i+1:]...)
			return true
		}
	}
	return false
}

// getSwitchArg consumes a switch and its value. Returns def when the switch
// is absent or has no value.
func (a *argumentList) getSwitchArg(option, def string) string {
	value, present := a.getOptionalSwitchArg(option)
	if !present || value == "" {
		return def
	}
	return value
}

// getOptionalSwitchArg consumes a switch whose value may be omitted. The
// next token counts as the value only when it does not look like another
// switch.
func (a *argumentList) getOptionalSwitchArg(option string) (string, bool) {
	for i, arg := range a.args {
		if arg != option {
			continue
		}
		if i+1 < len(a.args) && !strings.HasPrefix(a.args[i+1], "-") {
			value := a.args[i+1]
			a.args = append(a.args[:i], a.args[i+2:]...)
			return value, true
		}
		a.args = append(a.args[:i], a.args[i+1:]...)
		return "", true
	}
	return "", false
}
