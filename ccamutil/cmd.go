/*
Copyright © 2026 the runccam authors.
This file is part of runccam.

runccam is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

runccam is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with runccam.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package ccamutil contains the command-line interface of runccam.
package ccamutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/ccam-tools/runccam"
	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
type Cfg struct {
	*viper.Viper

	// Root is the main command.
	Root *cobra.Command

	versionCmd, runCmd, statusCmd, resetCmd, configCmd, planCmd *cobra.Command
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig creates the commands and binds the configuration
// options to them.
func InitializeConfig() *Cfg {
	cfg := &Cfg{Viper: viper.New()}

	cfg.Root = &cobra.Command{
		Use:   "runccam",
		Short: "A batch driver for the CCAM climate model.",
		Long: `runccam runs a CCAM simulation one batch at a time. Each invocation
generates any missing surface datasets, then prepares, simulates and
post-processes up to ncountmax months before saving its progress in the
run directory (hdir) and exiting, so that it can be resubmitted by a
batch scheduler until the simulation is complete.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'RUNCCAM_var' where 'var' is the
name of the variable to be set. Path variables may contain environment variables.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return cfg.setConfig() },
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of this version of runccam.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("runccam v%s\n", runccam.Version)
		},
		DisableAutoGenTag: true,
	}

	cfg.runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run one batch of the simulation.",
		Long: `run processes up to ncountmax months of the simulation, starting from
the date saved by the previous invocation. On exit, restart.qm in the run
directory holds "True" if the run should be resubmitted and "Complete" if
the end date has been reached. If an external program fails, the saved
date is left unchanged and the error is returned.`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			r, err := cfg.Run(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("%v after %d iterations; next date %v\n", r.Flag, r.Iterations, r.Clock.Date)
			return nil
		},
	}

	cfg.statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the progress of the simulation.",
		Long: `status prints the date the next invocation will start from, the
continuation flag left by the last invocation and whether the surface
datasets need to be regenerated.`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Status(context.Background(), cmd.OutOrStdout())
		},
	}

	cfg.resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Restart the simulation from the start date.",
		Long: `reset removes the saved date and the continuation flag from the
run directory, so that the next invocation starts from the configured
start date.`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hdir, err := cfg.path("hdir")
			if err != nil {
				return err
			}
			if err = runccam.NewCheckpointStore(hdir).Reset(); err != nil {
				return err
			}
			cmd.Printf("the next invocation will start from the configured start date\n")
			return nil
		},
	}

	cfg.configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the configuration.",
		Long: `config prints the configuration, after combining the defaults, the
configuration file, environment variables and command-line arguments,
in TOML format. The output can be used as a configuration file.`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cfg.RunConfig(); err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg.settings())
		},
	}

	cfg.planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Print the plan for the next month.",
		Long: `plan prints the stages that will run, the timestep, the physical
parameters and the file names that the next invocation will use for its
first month, without running anything.`,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Plan(context.Background(), cmd.OutOrStdout())
		},
	}

	// Link the commands together.
	cfg.Root.AddCommand(cfg.versionCmd, cfg.runCmd, cfg.statusCmd, cfg.resetCmd, cfg.configCmd, cfg.planCmd)

	root := []*pflag.FlagSet{cfg.Root.PersistentFlags()}
	home := []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.statusCmd.Flags(), cfg.configCmd.Flags(), cfg.planCmd.Flags(), cfg.resetCmd.Flags()}
	run := home[:4]

	options := []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   root,
		},
		{
			name: "verbose",
			usage: `
              verbose turns on debug logging.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   root,
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of the log messages that are written
              (panic, fatal, error, warn, info, debug or trace).`,
			defaultVal: "info",
			flagsets:   root,
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the file that log messages are written to in addition to
              standard error. Relative paths are relative to hdir. If LogFile
              is empty, messages are only written to standard error.`,
			defaultVal: "runccam.log",
			flagsets:   run,
		},
		{
			name: "name",
			usage: `
              name is the name of the run. It is used in the names of the
              output and restart files.`,
			defaultVal: "",
			flagsets:   run,
		},
		{
			name: "nproc",
			usage: `
              nproc is the number of processes the model and post-processor run on.`,
			defaultVal: 1,
			flagsets:   run,
		},
		{
			name: "machinetype",
			usage: `
              machinetype selects how parallel programs are started: "generic"
              (or 0) uses mpirun and "cray" (or 1) uses srun.`,
			defaultVal: "generic",
			flagsets:   run,
		},
		{
			name: "midlon",
			usage: `
              midlon is the central longitude of the domain [degrees].`,
			defaultVal: 0.,
			flagsets:   run,
		},
		{
			name: "midlat",
			usage: `
              midlat is the central latitude of the domain [degrees].`,
			defaultVal: 0.,
			flagsets:   run,
		},
		{
			name: "gridres",
			usage: `
              gridres is the grid resolution at the center of the domain [km].
              If it is -999, a global grid is assumed and the resolution
              is calculated from gridsize.`,
			defaultVal: runccam.Unset,
			flagsets:   run,
		},
		{
			name: "gridsize",
			usage: `
              gridsize is the size of the conformal-cubic grid.`,
			defaultVal: 96,
			flagsets:   run,
		},
		{
			name: "mlev",
			usage: `
              mlev is the number of model levels (27, 35, 54, 72, 108 or 144).`,
			defaultVal: 35,
			flagsets:   run,
		},
		{
			name: "iys",
			usage: `
              iys is the start year.`,
			defaultVal: 2000,
			flagsets:   run,
		},
		{
			name: "ims",
			usage: `
              ims is the start month.`,
			defaultVal: 1,
			flagsets:   run,
		},
		{
			name: "iye",
			usage: `
              iye is the end year.`,
			defaultVal: 2000,
			flagsets:   run,
		},
		{
			name: "ime",
			usage: `
              ime is the end month.`,
			defaultVal: 12,
			flagsets:   run,
		},
		{
			name: "calendar",
			usage: `
              calendar is the model calendar: "noleap" (or 0), "gregorian" (or 1),
              "360_day", or "auto" to read it from the host or SST files.`,
			defaultVal: "auto",
			flagsets:   run,
		},
		{
			name: "ncountmax",
			usage: `
              ncountmax is the number of months processed before the run must be
              resubmitted.`,
			defaultVal: 12,
			flagsets:   run,
		},
		{
			name: "ktc",
			usage: `
              ktc is the standard output period [minutes].`,
			defaultVal: 360,
			flagsets:   run,
		},
		{
			name: "minlat",
			usage: `
              minlat is the minimum latitude of the output [degrees]. -999
              derives it from the domain.`,
			defaultVal: runccam.Unset,
			flagsets:   run,
		},
		{
			name: "maxlat",
			usage: `
              maxlat is the maximum latitude of the output [degrees]. -999
              derives it from the domain.`,
			defaultVal: runccam.Unset,
			flagsets:   run,
		},
		{
			name: "minlon",
			usage: `
              minlon is the minimum longitude of the output [degrees]. -999
              derives it from the domain.`,
			defaultVal: runccam.Unset,
			flagsets:   run,
		},
		{
			name: "maxlon",
			usage: `
              maxlon is the maximum longitude of the output [degrees]. -999
              derives it from the domain.`,
			defaultVal: runccam.Unset,
			flagsets:   run,
		},
		{
			name: "reqres",
			usage: `
              reqres is the output resolution [degrees]. -999 derives it from
              the grid resolution.`,
			defaultVal: runccam.Unset,
			flagsets:   run,
		},
		{
			name: "outlevmode",
			usage: `
              outlevmode selects the output levels: 0 for pressure levels (plevs)
              and 1 for height levels (mlevs).`,
			defaultVal: 0,
			flagsets:   run,
		},
		{
			name: "plevs",
			usage: `
              plevs are the output pressure levels [hPa].`,
			defaultVal: "1000, 850, 700, 500, 300",
			flagsets:   run,
		},
		{
			name: "mlevs",
			usage: `
              mlevs are the output height levels [m].`,
			defaultVal: "10, 20, 40, 80, 140, 200",
			flagsets:   run,
		},
		{
			name: "dmode",
			usage: `
              dmode is the stage mode: gcm (0), sst (1), ccam (2), sst6hr (3),
              landsurface, postprocess, gcm-sst or aqua1 to aqua8.`,
			defaultVal: "gcm",
			flagsets:   run,
		},
		{
			name: "nstrength",
			usage: `
              nstrength is the nudging strength (0 normal, 1 strong).`,
			defaultVal: 0,
			flagsets:   run,
		},
		{
			name: "sib",
			usage: `
              sib is the land-surface scheme (1 CABLE, 2 MODIS, 3 CABLE with SLI).`,
			defaultVal: 1,
			flagsets:   run,
		},
		{
			name: "aero",
			usage: `
              aero turns on prognostic aerosols.`,
			defaultVal: false,
			flagsets:   run,
		},
		{
			name: "conv",
			usage: `
              conv is the convection scheme (0 2014, 1 2015a, 2 2015b, 3 2017).`,
			defaultVal: 3,
			flagsets:   run,
		},
		{
			name: "cloud",
			usage: `
              cloud is the cloud microphysics scheme (0 liquid and ice, 1 adds
              rain, 2 adds snow and graupel).`,
			defaultVal: 2,
			flagsets:   run,
		},
		{
			name: "bmix",
			usage: `
              bmix is the boundary-layer scheme (0 Ri, 1 TKE-eps, 2 HBG).`,
			defaultVal: 1,
			flagsets:   run,
		},
		{
			name: "river",
			usage: `
              river turns on river routing.`,
			defaultVal: false,
			flagsets:   run,
		},
		{
			name: "mlo",
			usage: `
              mlo uses the dynamical ocean rather than interpolated SSTs.
              It requires river.`,
			defaultVal: false,
			flagsets:   run,
		},
		{
			name: "casa",
			usage: `
              casa is the carbon cycle (0 off, 1 CASA-CNP, 2 CASA-CN+POP,
              3 CASA-CN+POP+CLIM).`,
			defaultVal: 0,
			flagsets:   run,
		},
		{
			name: "ncout",
			usage: `
              ncout is the standard output format (0 none, 1 CCAM, 2 CORDEX, 3 CTM,
              4 nearest).`,
			defaultVal: 1,
			flagsets:   run,
		},
		{
			name: "nctar",
			usage: `
              nctar selects what happens to the raw output (0 keep in OUTPUT,
              1 tar into OUTPUT, 2 delete).`,
			defaultVal: 1,
			flagsets:   run,
		},
		{
			name: "ncsurf",
			usage: `
              ncsurf is the high-frequency output (0 none, 1 lat/lon, 2 raw).`,
			defaultVal: 0,
			flagsets:   run,
		},
		{
			name: "ktc_surf",
			usage: `
              ktc_surf is the high-frequency output period [minutes].`,
			defaultVal: 10,
			flagsets:   run,
		},
		{
			name: "dailypp",
			usage: `
              dailypp post-processes one day at a time. It is only allowed with
              dmode=postprocess.`,
			defaultVal: false,
			flagsets:   run,
		},
		{
			name: "legacyqm",
			usage: `
              legacyqm writes the saved date as YYYYMM, as older run scripts
              expect.`,
			defaultVal: false,
			flagsets:   run,
		},
		{
			name: "bcdom",
			usage: `
              bcdom is the prefix of the host files.`,
			defaultVal: runccam.EraInterimPrefix,
			flagsets:   run,
		},
		{
			name: "sstfile",
			usage: `
              sstfile is the SST file in sstdir.`,
			defaultVal: "",
			flagsets:   run,
		},
		{
			name: "sstinit",
			usage: `
              sstinit is the initial conditions file for modes that don't start
              from the host fields. Relative paths are relative to sstdir.`,
			defaultVal: "",
			flagsets:   run,
		},
		{
			name: "cmip",
			usage: `
              cmip is the CMIP generation of the forcing datasets in stdat.`,
			defaultVal: "cmip5",
			flagsets:   run,
		},
		{
			name: "rcp",
			usage: `
              rcp is the emission scenario.`,
			defaultVal: "RCP45",
			flagsets:   run,
		},
		{
			name: "vegin",
			usage: `
              vegin overrides the land-use input dataset.`,
			defaultVal: "",
			flagsets:   run,
		},
		{
			name: "soilin",
			usage: `
              soilin overrides the soil input dataset.`,
			defaultVal: "",
			flagsets:   run,
		},
		{
			name: "insdir",
			usage: `
              insdir is the CCAM install directory.`,
			defaultVal: "${HOME}/ccaminstall",
			flagsets:   run,
		},
		{
			name: "hdir",
			usage: `
              hdir is the run directory, which holds the saved progress and the output.`,
			defaultVal: ".",
			flagsets:   home,
		},
		{
			name: "wdir",
			usage: `
              wdir is the directory the external programs run in. The default
              is hdir/wdir.`,
			defaultVal: "",
			flagsets:   run,
		},
		{
			name: "rstore",
			usage: `
              rstore is where the output is stored: "local" for hdir, or a
              bucket URL (file://, gs:// or s3://).`,
			defaultVal: "local",
			flagsets:   run,
		},
		{
			name: "bcdir",
			usage: `
              bcdir is the directory holding the host files.`,
			defaultVal: "",
			flagsets:   run,
		},
		{
			name: "sstdir",
			usage: `
              sstdir is the directory holding the SST files.`,
			defaultVal: "",
			flagsets:   run,
		},
		{
			name: "stdat",
			usage: `
              stdat is the directory holding the eigenvector, radiation and
              emission datasets. The default is insdir/ccamdata.`,
			defaultVal: "",
			flagsets:   run,
		},
	}
	for _, tool := range []string{"terread", "igbpveg", "sibveg", "ocnbath", "casafield", "aeroemiss", "model", "pcc2hist"} {
		options = append(options, option{
			name: tool,
			usage: fmt.Sprintf(`
              %s is the path of the %s executable.`, tool, executableName(tool)),
			defaultVal: executableName(tool),
			flagsets:   run,
		})
	}

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("RUNCCAM")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
	return cfg
}

func executableName(tool string) string {
	if tool == "model" {
		return "globpea"
	}
	return tool
}

// setConfig finds and reads in the configuration file, if there is one.
func (cfg *Cfg) setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("ccamutil: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// settings returns the configuration options other than the location
// of the configuration file.
func (cfg *Cfg) settings() map[string]interface{} {
	s := cfg.AllSettings()
	delete(s, "config")
	return s
}

// exitCode returns the process exit status for the error returned by
// Root. Transient failures, which may succeed if the run is
// resubmitted, are distinguished from configuration errors.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, runccam.ErrAlreadyComplete):
		return 3
	case runccam.IsTransient(err):
		return 2
	}
	return 1
}

// Execute runs the command line and returns the process exit status.
func (cfg *Cfg) Execute() int {
	err := cfg.Root.Execute()
	if err != nil {
		cfg.Root.PrintErrln(err)
	}
	return exitCode(err)
}
