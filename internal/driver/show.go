package driver

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Helcaraxan/pinbump/internal/updater"
)

func Show(cOpts *CommonOpts) *cobra.Command {
	opts := &showOptions{
		CommonOpts: cOpts,
	}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current and latest version of each tool without modifying anything.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.show(cmd.Context())
		},
	}

	return cmd
}

type showOptions struct {
	*CommonOpts
}

func (o *showOptions) show(ctx context.Context) error {
	path, err := o.versionsFile()
	if err != nil {
		return err
	}

	content, err := util.ReadFile(osfs.New("/"), path)
	if err != nil {
		o.Log.Error("Failed to read versions file.", zap.String("versions-file", path), zap.Error(err))
		return err
	}

	resolver := o.resolver(ctx)
	rows := []string{
		"Tool | Current | Latest | Source",
		"---- | ------- | ------ | ------",
	}
	for _, tool := range o.Config.Tools {
		current, ok, err := updater.CurrentVersion(content, tool)
		if err != nil {
			o.Log.Error("Tool name can not be used to match pins.", zap.String("tool", tool), zap.Error(err))
			return err
		}
		if !ok {
			current = "-"
		}
		r := resolver.Resolve(ctx, tool)
		rows = append(rows, fmt.Sprintf("%s | %s | %s | %s", tool, current, r.Version, r.Origin))
	}

	_, err = fmt.Fprintln(o.Stdout, columnize.SimpleFormat(rows))
	return err
}
