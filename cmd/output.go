package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()

	greenCheck = color.GreenString("✓")
	redCross   = color.RedString("✗")
)

func logSuccess(format string, args ...any) {
	log.Info().Msgf(greenCheck+" "+format, args...)
}

func logError(err error, short string) error {
	log.Error().Msgf("%s %s", redCross, short)
	log.Error().Msgf("error: %v", err)
	return BeQuietError{}
}

func printKV(key string, value any) {
	fmt.Printf("  %s: %v\n", faint(key), value)
}

// BeQuietError signals that the error has already been presented to the
// user and should not be printed again by the root command.
type BeQuietError struct{}

func (BeQuietError) Error() string { return "" }
