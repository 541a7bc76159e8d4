/*
 * root.go, part of MEPS.
 *
 * Copyright 2025 zhangshd
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//exit codes
const (
	exitOK     = 0
	exitFailed = 1 //a calculation ran and failed
	exitUsage  = 2 //bad flags, config, or environment
)

var version = "dev"

type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func run() int {
	a := &app{v: viper.New()}
	root := newRootCommand(a)
	if err := root.Execute(); err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, "error:", err)
			return exitUsage
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitFailed
	}
	return exitOK
}

//usageError marks configuration and input problems that are the
//operator's to fix, as opposed to calculations that genuinely failed.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func newRootCommand(a *app) *cobra.Command {
	var cfgFile string
	var verbose bool
	cmd := &cobra.Command{
		Use:           "meps",
		Short:         "intermolecular interaction energies with Gaussian and Vina",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(cfgFile, cmd); err != nil {
				return &usageError{err: err}
			}
			return a.initLogger(verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default ./meps.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.String("method", "B3LYP", "density functional")
	pf.String("basis", "6-311++G(d,p)", "basis set")
	pf.String("dispersion", "GD3BJ", "empirical dispersion keyword, empty to disable")
	pf.String("mem", "4GB", "memory per Gaussian job")
	pf.Int("nproc", 1, "cores per Gaussian job")
	pf.String("g16root", "", "Gaussian root directory (default $g16root)")
	for _, key := range []string{"method", "basis", "dispersion", "mem", "nproc", "g16root"} {
		a.v.BindPFlag(key, pf.Lookup(key))
	}
	cmd.AddCommand(newRunCommand(a))
	cmd.AddCommand(newBatchCommand(a))
	return cmd
}

//initConfig loads ./meps.yaml (or the file given with --config) and
//lets MEPS_* environment variables override it. Flags set explicitly
//on the command line override both.
func (a *app) initConfig(cfgFile string, cmd *cobra.Command) error {
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("meps")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("$HOME/.config/meps")
	}
	a.v.SetEnvPrefix("MEPS")
	a.v.AutomaticEnv()
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil //the config file is optional unless named explicitly
		}
		return err
	}
	return nil
}

func (a *app) initLogger(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return err
	}
	a.log = log
	return nil
}
