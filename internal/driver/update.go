package driver

import (
	"context"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Helcaraxan/pinbump/internal/flock"
	"github.com/Helcaraxan/pinbump/internal/logger"
	"github.com/Helcaraxan/pinbump/internal/updater"
)

func Update(cOpts *CommonOpts) *cobra.Command {
	opts := &updateOptions{
		CommonOpts: cOpts,
	}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the version pins in the versions file to their latest version.",
		Long: `Rewrites every pin of the form TOOL="X.Y.Z" in the versions file to the latest known version
of the tool. Tools are processed one at a time in their configured order and a line is printed for
each of them. Pins that do not hold a dotted version, such as "latest" or "v1.2.3", are left as is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.update(cmd.Context())
		},
	}

	return cmd
}

type updateOptions struct {
	*CommonOpts
}

func (o *updateOptions) update(ctx context.Context) (err error) {
	path, err := o.versionsFile()
	if err != nil {
		return err
	}
	log := o.Log.With(zap.String("versions-file", path))

	lockLog := o.LogBuilder.Domain(logger.LockDomain)
	if err = flock.Acquire(ctx, lockLog, path); err != nil {
		log.Error("Could not lock the versions file.", zap.Error(err))
		return err
	}
	defer func() {
		if releaseErr := flock.Release(lockLog, path); err == nil {
			err = releaseErr
		}
	}()

	u := updater.New(o.LogBuilder.Domain(logger.UpdateDomain), osfs.New("/"), o.resolver(ctx), o.Stdout)
	if err = u.Run(ctx, path, o.Config.Tools); err != nil {
		return err
	}
	log.Debug("Updated all version pins.", zap.Strings("tools", o.Config.Tools))
	return nil
}
