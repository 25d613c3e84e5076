package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gobeaver/filekit-wxwork/filekit"
	"github.com/gobeaver/filekit-wxwork/filekit/driver/wxwork"
)

var (
	dirColor  = color.New(color.FgCyan, color.Bold)
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

// opener builds the adapter for a command; tests replace it.
type opener func(cmd *cobra.Command) (*wxwork.Adapter, func(), error)

func newRootCmd() *cobra.Command {
	v := viper.New()
	open := func(cmd *cobra.Command) (*wxwork.Adapter, func(), error) {
		s, err := loadSettings(v)
		if err != nil {
			return nil, nil, err
		}
		a, store, err := s.open()
		if err != nil {
			return nil, nil, err
		}
		return a, func() { store.Close() }, nil
	}
	return buildRootCmd(v, open)
}

func buildRootCmd(v *viper.Viper, open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "wxworkfs",
		Short:         "Store files as WeCom media with a cached directory tree",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	bindFlags(root, v)

	// run wraps a command body with adapter setup and teardown.
	run := func(fn func(ctx context.Context, cmd *cobra.Command, a *wxwork.Adapter, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, done, err := open(cmd)
			if err != nil {
				return err
			}
			defer done()
			return fn(cmd.Context(), cmd, a, args)
		}
	}

	var contentType string
	put := &cobra.Command{
		Use:   "put <local-file> <path>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, a *wxwork.Adapter, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var opts []filekit.Option
			if contentType != "" {
				opts = append(opts, filekit.WithContentType(contentType))
			}
			rec, err := a.Write(ctx, args[1], f, opts...)
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", rec.Path, rec.MediaID, rec.Size)
			return nil
		}),
	}
	put.Flags().StringVar(&contentType, "content-type", "", "mime type to record")

	get := &cobra.Command{
		Use:   "get <path> [local-file]",
		Short: "Download a file to a local file or stdout",
		Args:  cobra.RangeArgs(1, 2),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, a *wxwork.Adapter, args []string) error {
			rc, err := a.Download(ctx, args[0])
			if err != nil {
				return err
			}
			defer rc.Close()

			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 2 {
				f, err := os.Create(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			_, err = io.Copy(w, rc)
			return err
		}),
	}

	var recursive bool
	ls := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, a *wxwork.Adapter, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			records, err := a.ListContents(ctx, prefix, recursive)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range records {
				if r.IsDir() {
					dirColor.Fprintf(out, "%s/\n", r.Path)
					continue
				}
				fmt.Fprintf(out, "%-40s %10d  %s  %s\n", r.Path, r.Size, r.LastModified().Format(time.RFC3339), r.MediaID)
			}
			return nil
		}),
	}
	ls.Flags().BoolVarP(&recursive, "recursive", "r", false, "list the whole subtree")

	stat := &cobra.Command{
		Use:   "stat <path>",
		Short: "Show cached metadata",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, a *wxwork.Adapter, args []string) error {
			r, err := a.Metadata(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path:      %s\n", r.Path)
			fmt.Fprintf(out, "type:      %s\n", r.Type)
			if !r.IsDir() {
				fmt.Fprintf(out, "media_id:  %s\n", r.MediaID)
				fmt.Fprintf(out, "size:      %d\n", r.Size)
				fmt.Fprintf(out, "mimetype:  %s\n", r.MimeType)
			}
			fmt.Fprintf(out, "modified:  %s\n", r.LastModified().Format(time.RFC3339))
			return nil
		}),
	}

	mime := &cobra.Command{
		Use:   "mime <path>",
		Short: "Resolve and cache the mime type",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, a *wxwork.Adapter, args []string) error {
			mt, err := a.MimeType(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mt)
			return nil
		}),
	}

	media := &cobra.Command{
		Use:   "media <path>",
		Short: "Print the media id of a file",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, a *wxwork.Adapter, args []string) error {
			id, err := a.MediaID(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}),
	}

	move := func(use, short string, fn func(*wxwork.Adapter) func(context.Context, string, string) (bool, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <path> <new-path>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, cmd *cobra.Command, a *wxwork.Adapter, args []string) error {
				ok, err := fn(a)(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if !ok {
					warnColor.Fprintf(cmd.ErrOrStderr(), "%s: no such entry\n", args[0])
					return &filekit.PathError{Op: use, Path: args[0], Err: filekit.ErrNotExist}
				}
				return nil
			}),
		}
	}
	mv := move("mv", "Rename an entry (not recursive)", func(a *wxwork.Adapter) func(context.Context, string, string) (bool, error) { return a.Rename })
	cp := move("cp", "Copy an entry (not recursive)", func(a *wxwork.Adapter) func(context.Context, string, string) (bool, error) { return a.Copy })

	simple := func(use, short string, fn func(*wxwork.Adapter) func(context.Context, string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <path>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, cmd *cobra.Command, a *wxwork.Adapter, args []string) error {
				return fn(a)(ctx, args[0])
			}),
		}
	}
	rm := simple("rm", "Forget a file (the media itself is kept)", func(a *wxwork.Adapter) func(context.Context, string) error { return a.Delete })
	mkdir := simple("mkdir", "Create a directory and its parents", func(a *wxwork.Adapter) func(context.Context, string) error { return a.CreateDir })
	rmdir := simple("rmdir", "Remove a directory record (not recursive)", func(a *wxwork.Adapter) func(context.Context, string) error { return a.DeleteDir })

	root.AddCommand(put, get, ls, stat, mime, media, mv, cp, rm, mkdir, rmdir)
	return root
}
