// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	hivelog "github.com/iotaledger/hive.go/log"
)

var (
	VerboseFlag bool
	DebugFlag   bool

	// Out and Err are the destinations of regular and error output.
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr

	// exit terminates the process after a fatal error.
	exit = os.Exit
)

func Init(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().BoolVarP(&VerboseFlag, "verbose", "v", false, "verbose")
	rootCmd.PersistentFlags().BoolVarP(&DebugFlag, "debug", "d", false, "debug")
}

func Printf(format string, args ...interface{}) {
	fmt.Fprintf(Out, format, args...)
}

func Verbosef(format string, args ...interface{}) {
	if VerboseFlag {
		Printf(format, args...)
	}
}

// PrintYAML writes v to the standard output as a YAML document.
func PrintYAML(v interface{}) {
	enc := yaml.NewEncoder(Out)
	enc.SetIndent(2)
	Check(enc.Encode(v))
	Check(enc.Close())
}

func Fatal(args ...interface{}) {
	fmt.Fprintf(Err, "error: %s\n", fmt.Sprint(args...))
	exit(1)
}

func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Sprintf(format, args...))
}

func Check(err error) {
	if err != nil {
		Fatal(err.Error())
	}
}

// HiveLogger is the logger handed to library components. Their output is
// only shown in verbose or debug mode.
func HiveLogger() hivelog.Logger {
	level := "info"
	if DebugFlag {
		level = "debug"
	}
	loggerLevel, err := hivelog.LevelFromString(level)
	Check(err)
	out := io.Discard
	if VerboseFlag || DebugFlag {
		out = Err
	}
	return hivelog.NewLogger(
		hivelog.WithName("profile-cli"),
		hivelog.WithLevel(loggerLevel),
		hivelog.WithOutput(out),
	)
}
