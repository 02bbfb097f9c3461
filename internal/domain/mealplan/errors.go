package mealplan

import "errors"

var (
	// ErrDayConfirmed signals a mutation attempted against a day already in
	// its terminal confirmed state.
	ErrDayConfirmed = errors.New("plan day already confirmed")

	// ErrSlotNotFound signals a meal time with no slot on the day.
	ErrSlotNotFound = errors.New("plan slot not found")
)
