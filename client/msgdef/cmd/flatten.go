package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wkalt/msgdef/client/msgdef/util"
	"github.com/wkalt/msgdef/registry"
)

var (
	flattenMessagePaths []string
	flattenPackagePath  string
	flattenMD5          bool

	checkMessagePaths []string
	checkPackagePath  string
)

// flattenCmd resolves a type from local .msg files and prints its
// concatenated definition.
var flattenCmd = &cobra.Command{
	Use:   "flatten type",
	Short: "Print the concatenated definition of a type from local .msg files",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		reg, err := loadLocalRegistry(ctx, flattenMessagePaths, flattenPackagePath)
		if err != nil {
			bailf("error loading messages: %s", err)
		}
		def, err := reg.Definition(ctx, args[0])
		if err != nil {
			bail("error flattening "+args[0], err)
		}
		if flattenMD5 {
			fmt.Println(def.MD5Sum)
			return
		}
		fmt.Print(def.Text)
	},
}

// checkCmd flattens every type found in local .msg files and reports the
// ones that fail.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every type in local .msg files can be flattened",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		reg, err := loadLocalRegistry(ctx, checkMessagePaths, checkPackagePath)
		if err != nil {
			bailf("error loading messages: %s", err)
		}
		problems := reg.Check(ctx)
		if len(problems) == 0 {
			fmt.Printf("%d types ok\n", reg.Len())
			return
		}
		names := make([]string, 0, len(problems))
		for name := range problems {
			names = append(names, name)
		}
		slices.Sort(names)
		data := make([][]string, 0, len(names))
		for _, name := range names {
			data = append(data, []string{name, problems[name].Error()})
		}
		util.PrintTable(os.Stdout, []string{"Type", "Error"}, data)
		os.Exit(1)
	},
}

func loadLocalRegistry(ctx context.Context, paths []string, packagePath string) (*registry.Registry, error) {
	reg := registry.New()
	for _, path := range paths {
		if _, err := reg.LoadDirectory(ctx, path); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(packagePath) != "" {
		if _, err := reg.LoadPackagePath(ctx, packagePath); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func init() {
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(checkCmd)

	flattenCmd.PersistentFlags().StringSliceVarP(&flattenMessagePaths, "msg-path", "m", nil, "directories of .msg files")
	flattenCmd.PersistentFlags().StringVarP(&flattenPackagePath, "ros-package-path", "",
		os.Getenv("ROS_PACKAGE_PATH"), "ROS package path")
	flattenCmd.PersistentFlags().BoolVarP(&flattenMD5, "md5", "", false, "print only the MD5 sum")

	checkCmd.PersistentFlags().StringSliceVarP(&checkMessagePaths, "msg-path", "m", nil, "directories of .msg files")
	checkCmd.PersistentFlags().StringVarP(&checkPackagePath, "ros-package-path", "",
		os.Getenv("ROS_PACKAGE_PATH"), "ROS package path")
}
