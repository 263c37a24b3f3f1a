/*
Copyright © 2019 the Conflict authors.
This file is part of Conflict.

Conflict is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Conflict is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Conflict.  If not, see <http://www.gnu.org/licenses/>.
*/

package conflictutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/conflict"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger used by the command line interface.
var Log = logrus.New()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to Conflict.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel specifies the minimum severity of log messages:
              one of panic, fatal, error, warning, info, or debug.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LandUseShapefile",
			usage: `
              LandUseShapefile is the path to the polygon shapefile holding
              the land use parcels. Polygons later in the file take
              precedence where parcels overlap.`,
			shorthand:  "l",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{rasterizeCmd.Flags(), flagCmd.Flags()},
		},
		{
			name: "NameField",
			usage: `
              NameField is the attribute of the land use shapefile holding
              the parcel names.`,
			defaultVal: "Name",
			flagsets:   []*pflag.FlagSet{rasterizeCmd.Flags(), flagCmd.Flags()},
		},
		{
			name: "CodeField",
			usage: `
              CodeField is the attribute of the land use shapefile holding
              the integer land use codes.`,
			defaultVal: "Code",
			flagsets:   []*pflag.FlagSet{rasterizeCmd.Flags(), flagCmd.Flags()},
		},
		{
			name: "Dx",
			usage: `
              Dx is the cell width of the output grid, in the units of the
              input projection.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{rasterizeCmd.Flags(), maskCmd.Flags()},
		},
		{
			name: "Dy",
			usage: `
              Dy is the cell height of the output grid, in the units of the
              input projection. ASCII grid output requires Dx == Dy.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{rasterizeCmd.Flags(), maskCmd.Flags()},
		},
		{
			name: "AOI",
			usage: `
              AOI is the path to a shapefile or GeoJSON file holding the
              single area of interest polygon. When set, it defines the grid
              extent and cells outside of it are set to NoData.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{rasterizeCmd.Flags(), maskCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the output grid. Files ending in
              .gob are written in binary form; all others as ESRI ASCII grids.
              For the flag command it is the output shapefile.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{rasterizeCmd.Flags(), maskCmd.Flags(), flagCmd.Flags()},
		},
		{
			name: "Projection",
			usage: `
              Projection is the spatial reference of the outputs as a PROJ4 or
              WKT string. If empty, the projection of the input shapefile
              is used when it has one.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{rasterizeCmd.Flags(), maskCmd.Flags(), flagCmd.Flags()},
		},
		{
			name: "ProjectFile",
			usage: `
              ProjectFile is the path to a TOML project file defining the land
              use classes and the selected contaminants. If empty, land use
              codes 1..NLandUses are used. The project's AOI, Scenario, and
              Layout are used where the AOI, ScenarioDir, and Layout options
              are empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{flagCmd.Flags(), rasterizeCmd.Flags(), maskCmd.Flags(), cleanupCmd.Flags()},
		},
		{
			name: "NLandUses",
			usage: `
              NLandUses is the number of land use classes when no ProjectFile
              is given.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{flagCmd.Flags()},
		},
		{
			name: "TargetFile",
			usage: `
              TargetFile is the path to the CSV table of remediation targets
              per contaminant and land use.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{flagCmd.Flags()},
		},
		{
			name: "Contamination",
			usage: `
              Contamination maps contaminant names to ESRI ASCII grids of
              realized contamination. When set from the command line it
              should be a JSON object such as {"Benzene":"benzene.asc"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{flagCmd.Flags()},
		},
		{
			name: "ConflictGridDir",
			usage: `
              ConflictGridDir, when set, is the directory where a per-cell
              conflict grid is written for each contaminant.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{flagCmd.Flags()},
		},
		{
			name: "ScenarioDir",
			usage: `
              ScenarioDir is the scenario directory holding the layout
              directories.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cleanupCmd.Flags()},
		},
		{
			name: "Layout",
			usage: `
              Layout is the name of the layout directory to clean.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cleanupCmd.Flags()},
		},
		{
			name: "Keep",
			usage: `
              Keep lists the layout entries that survive cleanup. Entries
              starting with '.' are suffixes appended to the layout name;
              others are entry names in the layout directory.`,
			defaultVal: DefaultKeep,
			flagsets:   []*pflag.FlagSet{cleanupCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CONFLICT")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, v, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, v, option.usage)
				}
			case []string:
				set.StringSlice(option.name, v, option.usage)
			case bool:
				set.Bool(option.name, v, option.usage)
			case int:
				set.Int(option.name, v, option.usage)
			case float64:
				set.Float64(option.name, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(v)
				set.String(option.name, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(rasterizeCmd)
	Root.AddCommand(maskCmd)
	Root.AddCommand(flagCmd)
	Root.AddCommand(cleanupCmd)
}

// setConfig loads a .env file if there is one, then finds and reads in the
// configuration file, if there is one, and sets the log level.
func setConfig() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("conflict: problem reading .env file: %v", err)
		}
	}
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("conflict: problem reading configuration file: %v", err)
		}
	}
	lvl, err := logrus.ParseLevel(Cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("conflict: %v", err)
	}
	Log.Level = lvl
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "conflict",
	Short: "Detect conflicts between land use and remediation targets.",
	Long: `conflict compares realized soil and groundwater contamination with the
remediation targets of the land uses planned for a site. Use the subcommands
specified below to rasterize land use plans, build area of interest masks,
flag target exceedances, and tidy layout directories.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CONFLICT_var' where 'var' is
the name of the variable to be set. A .env file in the working directory is
read before the configuration file.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Conflict.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Conflict v%s\n", conflict.Version)
	},
	DisableAutoGenTag: true,
}

var rasterizeCmd = &cobra.Command{
	Use:   "rasterize",
	Short: "Convert a land use shapefile to a categorical grid.",
	Long: `rasterize samples the land use parcels at the centers of a regular
grid and writes the land use code of each cell. Cells covered by no parcel,
or outside of the AOI when one is given, are NoData.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dx, dy, err := resolution()
		if err != nil {
			return err
		}
		paths := projectPaths{AOI: Cfg.GetString("AOI")}
		if err := paths.fillFrom(Cfg.GetString("ProjectFile")); err != nil {
			return err
		}
		return Rasterize(Log,
			Cfg.GetString("LandUseShapefile"),
			Cfg.GetString("NameField"), Cfg.GetString("CodeField"),
			dx, dy,
			paths.AOI,
			Cfg.GetString("OutputFile"),
			Cfg.GetString("Projection"),
		)
	},
	DisableAutoGenTag: true,
}

var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Convert an area of interest polygon to a 1/0 grid.",
	Long: `mask writes a grid covering the extent of the AOI polygon in which cells
whose centers are inside the polygon are 1 and all others are 0.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dx, dy, err := resolution()
		if err != nil {
			return err
		}
		paths := projectPaths{AOI: Cfg.GetString("AOI")}
		if err := paths.fillFrom(Cfg.GetString("ProjectFile")); err != nil {
			return err
		}
		return Mask(Log,
			paths.AOI,
			dx, dy,
			Cfg.GetString("OutputFile"),
			Cfg.GetString("Projection"),
		)
	},
	DisableAutoGenTag: true,
}

var flagCmd = &cobra.Command{
	Use:   "flag",
	Short: "Flag parcels whose remediation targets are exceeded.",
	Long: `flag compares contamination grids with the remediation targets of the
land use of each parcel and writes a shapefile with one 1/0 attribute per
contaminant. Optionally, per-cell conflict grids are written as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		contamination, err := GetStringMapString("Contamination", Cfg)
		if err != nil {
			return err
		}
		nLandUses, err := cast.ToIntE(Cfg.Get("NLandUses"))
		if err != nil {
			return fmt.Errorf("conflict: NLandUses: %v", err)
		}
		return Flag(Log,
			Cfg.GetString("LandUseShapefile"),
			Cfg.GetString("NameField"), Cfg.GetString("CodeField"),
			Cfg.GetString("ProjectFile"),
			Cfg.GetString("TargetFile"),
			nLandUses,
			contamination,
			Cfg.GetString("OutputFile"),
			Cfg.GetString("ConflictGridDir"),
			Cfg.GetString("Projection"),
		)
	},
	DisableAutoGenTag: true,
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Empty a layout directory, keeping its cost and optimization files.",
	Long: `cleanup deletes the contents of a layout directory inside a scenario
directory except for the entries listed in Keep.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, err := cast.ToStringSliceE(Cfg.Get("Keep"))
		if err != nil {
			return fmt.Errorf("conflict: Keep: %v", err)
		}
		paths := projectPaths{
			ScenarioDir: Cfg.GetString("ScenarioDir"),
			Layout:      Cfg.GetString("Layout"),
		}
		if err := paths.fillFrom(Cfg.GetString("ProjectFile")); err != nil {
			return err
		}
		return Cleanup(Log,
			paths.ScenarioDir,
			paths.Layout,
			keep,
		)
	},
	DisableAutoGenTag: true,
}

// resolution returns the configured grid resolution.
func resolution() (dx, dy float64, err error) {
	dx, err = cast.ToFloat64E(Cfg.Get("Dx"))
	if err != nil {
		return 0, 0, fmt.Errorf("conflict: Dx: %v", err)
	}
	dy, err = cast.ToFloat64E(Cfg.Get("Dy"))
	if err != nil {
		return 0, 0, fmt.Errorf("conflict: Dy: %v", err)
	}
	return dx, dy, nil
}
