/*
Copyright © 2021 the odg authors.
This file is part of odg.

odg is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

odg is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with odg.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cmd implements the odg command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lnashier/viper"
	"github.com/oceandata/odg"
	"github.com/oceandata/odg/dataset"
	"github.com/oceandata/odg/local"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information and the command tree that uses
// it.
type Cfg struct {
	*viper.Viper

	Root, versionCmd, catalogCmd, idsCmd, metaCmd, loadCmd *cobra.Command
}

// option is a configuration option that can be set by a flag, an
// environment variable or a configuration file.
type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig creates the command tree and its configuration.
func InitializeConfig() *Cfg {
	cfg := &Cfg{Viper: viper.New()}

	cfg.Root = &cobra.Command{
		Use:   "odg",
		Short: "Catalog and read local oceanographic data files.",
		Long: `odg catalogs local CSV and netCDF files, summarizing the spatial and
temporal extent and the variables of each, and reads their contents.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ODG_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return cfg.setConfig() },
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of this version of odg.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "odg v%s\n", odg.Version)
		},
		DisableAutoGenTag: true,
	}

	cfg.catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Build the catalog",
		Long: `catalog builds a catalog of the files given with --files and writes it to
the location given with --catalog, or to a new file in --catalog_dir. If the
catalog already exists it is left unchanged. The catalog location is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := cfg.reader()
			if err != nil {
				return err
			}
			if _, err := r.Catalog(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.CatalogLocation())
			return nil
		},
		DisableAutoGenTag: true,
	}

	cfg.idsCmd = &cobra.Command{
		Use:   "ids",
		Short: "List dataset identifiers",
		Long:  `ids prints the identifier of each dataset in the catalog, one per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := cfg.reader()
			if err != nil {
				return err
			}
			ids, err := r.DatasetIDs()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
		DisableAutoGenTag: true,
	}

	cfg.metaCmd = &cobra.Command{
		Use:   "meta",
		Short: "Print dataset metadata",
		Long:  `meta prints the metadata of every dataset in the catalog as a table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := cfg.reader()
			if err != nil {
				return err
			}
			m, err := r.MetaTable()
			if err != nil {
				return err
			}
			_, err = m.WriteTo(cmd.OutOrStdout())
			return err
		},
		DisableAutoGenTag: true,
	}

	cfg.loadCmd = &cobra.Command{
		Use:   "load [dataset ids]",
		Short: "Read datasets",
		Long: `load reads the given datasets, or every dataset in the catalog if none
are given, and prints a summary of each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := cfg.reader()
			if err != nil {
				return err
			}
			ctx := context.Background()
			var data map[string]dataset.Data
			if len(args) == 0 {
				if data, err = r.Data(ctx); err != nil {
					return err
				}
			} else {
				data = make(map[string]dataset.Data, len(args))
				for _, id := range args {
					if data[id], err = r.Load(ctx, id); err != nil {
						return err
					}
				}
			}
			ids := make([]string, 0, len(data))
			for id := range data {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				d := data[id]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", id, d.Format(), strings.Join(d.VariableNames(), ","))
			}
			return nil
		},
		DisableAutoGenTag: true,
	}

	options := []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "catalog",
			usage: `
              catalog specifies the location of the catalog document. An existing
              catalog is reused; otherwise it is built from the files given
              by --files. If empty, a new catalog is created in catalog_dir.`,
			shorthand:  "c",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "catalog_dir",
			usage: `
              catalog_dir specifies the directory where new catalogs are
              created when no catalog location is given.`,
			defaultVal: local.DefaultCatalogDir(),
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "files",
			usage: `
              files specifies the CSV and netCDF files to catalog.
              Files ending in .csv are read as tables; files ending in
              .nc, .nc4, .cdf or .netcdf are read as netCDF.`,
			shorthand:  "f",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "parallel",
			usage: `
              parallel specifies whether datasets are read concurrently.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{cfg.loadCmd.Flags()},
		},
		{
			name: "approach",
			usage: `
              approach specifies how datasets are selected: "region" or
              "stations".`,
			defaultVal: string(local.Region),
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "min_time",
			usage: `
              min_time specifies the start of the time window of interest.`,
			defaultVal: "1900-01-01",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "max_time",
			usage: `
              max_time specifies the end of the time window of interest.`,
			defaultVal: "2100-12-31",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "bbox",
			usage: `
              bbox specifies the region of interest as
              "min_lon,min_lat,max_lon,max_lat". It only applies when
              approach is "region".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "variables",
			usage: `
              variables specifies the CF standard names of the variables of
              interest. It only applies when approach is "region".`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "dataset_ids",
			usage: `
              dataset_ids specifies the datasets of interest. It only
              applies when approach is "stations".`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "stations",
			usage: `
              stations specifies the stations of interest. It only applies
              when approach is "stations".`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "log_level",
			usage: `
              log_level specifies the logging verbosity: one of "debug",
              "info", "warning" or "error".`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
	}

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("ODG")
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
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	cfg.Root.AddCommand(cfg.versionCmd, cfg.catalogCmd, cfg.idsCmd, cfg.metaCmd, cfg.loadCmd)
	return cfg
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func (cfg *Cfg) setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("odg: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(cfg.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("odg: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

// readerArgs collects the reader arguments from the configuration.
func (cfg *Cfg) readerArgs() (map[string]interface{}, error) {
	kw := map[string]interface{}{
		"min_time": cfg.GetString("min_time"),
		"max_time": cfg.GetString("max_time"),
	}
	if bbox := cfg.GetString("bbox"); bbox != "" {
		parts := strings.Split(bbox, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("odg: bbox %q must have four comma-separated values", bbox)
		}
		for i, k := range []string{"min_lon", "min_lat", "max_lon", "max_lat"} {
			v, err := cast.ToFloat64E(strings.TrimSpace(parts[i]))
			if err != nil {
				return nil, fmt.Errorf("odg: bbox %q: %v", bbox, err)
			}
			kw[k] = v
		}
	}
	args := map[string]interface{}{
		local.ParallelKey:   cfg.GetBool("parallel"),
		local.CatalogDirKey: os.ExpandEnv(cfg.GetString("catalog_dir")),
		local.KWKey:         kw,
	}
	if c := cfg.GetString("catalog"); c != "" {
		args[local.CatalogNameKey] = os.ExpandEnv(c)
	}
	lists := map[string]string{
		"files":       local.FilenamesKey,
		"variables":   local.VariablesKey,
		"dataset_ids": local.DatasetIDsKey,
		"stations":    local.StationsKey,
	}
	for name, key := range lists {
		vals, err := cast.ToStringSliceE(cfg.Get(name))
		if err != nil {
			return nil, fmt.Errorf("odg: %s: %v", name, err)
		}
		if len(vals) == 0 {
			continue
		}
		if name == "files" {
			for i, v := range vals {
				vals[i] = os.ExpandEnv(v)
			}
		}
		args[key] = vals
	}
	return args, nil
}

// reader creates a local reader from the configuration.
func (cfg *Cfg) reader() (*local.Reader, error) {
	args, err := cfg.readerArgs()
	if err != nil {
		return nil, err
	}
	switch a := local.Approach(cfg.GetString("approach")); a {
	case local.Region:
		return local.RegionFromMap(args)
	case local.Stations:
		return local.StationsFromMap(args)
	default:
		return nil, fmt.Errorf("odg: invalid approach %q; must be %q or %q", a, local.Region, local.Stations)
	}
}
