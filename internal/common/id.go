package common

import (
	"strings"

	"github.com/google/uuid"
)

// RunIDPrefix marks scenario attempt IDs in logs and the run history.
const RunIDPrefix = "run_"

// NewRunID returns a random attempt ID of the form run_<uuid>.
func NewRunID() string {
	return RunIDPrefix + uuid.NewString()
}

// IsRunID reports whether id has the form produced by NewRunID.
func IsRunID(id string) bool {
	rest, ok := strings.CutPrefix(id, RunIDPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
