package service

import "fmt"

// Stage names a step of the discovery pipeline
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageParse    Stage = "parse"
	StagePopulate Stage = "populate"
)

// StageError wraps the fatal error of a pipeline stage
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
