package service

import "errors"

// Sentinel error kinds for the pipeline.
var (
	ErrNoRecipes    = errors.New("no recipes to run")
	ErrRecipeFailed = errors.New("recipe failed")
)
