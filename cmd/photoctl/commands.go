package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rental-portal/internal/auth"
	"rental-portal/internal/cleanup"
	"rental-portal/internal/photos"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSlugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slug <text...>",
		Short: "Print the slug used in photo paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := photos.Slugify(strings.Join(args, " "))
			if slug == "" {
				return errors.New("text has no letters or digits")
			}
			fmt.Fprintln(cmd.OutOrStdout(), slug)
			return nil
		},
	}
}

func newPathCmd() *cobra.Command {
	var city, name, category, unit string
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the storage directory for a property, category or unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if category != "" && unit != "" {
				return errors.New("--category and --unit are mutually exclusive")
			}
			resolver := photos.NewResolver(photos.DefaultRoot)
			dir, err := resolver.PropertyRoot(city, name)
			if err != nil {
				return err
			}
			switch {
			case unit != "":
				dir, err = resolver.UnitDir(dir, unit)
				if err != nil {
					return err
				}
			case category != "":
				c, err := photos.ParseCategory(category)
				if err != nil {
					return err
				}
				dir = resolver.CategoryDir(dir, c)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "Property city")
	cmd.Flags().StringVar(&name, "name", "", "Property name")
	cmd.Flags().StringVar(&category, "category", "", "exterior, interior or amenities")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit number")
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newImportCmd(v *viper.Viper) *cobra.Command {
	var propertyID, unitID uint
	var category string
	cmd := &cobra.Command{
		Use:   "import DIR",
		Short: "Normalize and store every image in DIR for a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := photos.Destination{PropertyID: propertyID}
			switch {
			case unitID != 0 && category != "":
				return errors.New("--category and --unit-id are mutually exclusive")
			case unitID != 0:
				dest.UnitID = &unitID
			default:
				c, err := photos.ParseCategory(category)
				if err != nil {
					return err
				}
				dest.Category = c
			}

			files, err := collectImages(args[0])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no images found in %s", args[0])
			}

			app, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			batch := app.Config.Photos.MaxFiles
			stored, failed := 0, 0
			for start := 0; start < len(files); start += batch {
				end := min(start+batch, len(files))
				report, err := app.Photos.Upload(cmd.Context(), dest, files[start:end])
				if report != nil {
					for _, f := range report.Files {
						fmt.Fprintf(out, "stored  %s -> %s\n", f.OriginalName, f.URL)
					}
					for _, f := range report.Errors {
						fmt.Fprintf(out, "failed  %s: %s\n", f.OriginalName, f.Error)
					}
					stored += len(report.Files)
					failed += len(report.Errors)
				}
				if err != nil && report == nil {
					return err
				}
			}
			fmt.Fprintf(out, "%d stored, %d failed\n", stored, failed)
			if stored == 0 {
				return errors.New("no photos were imported")
			}
			return nil
		},
	}
	cmd.Flags().UintVar(&propertyID, "property-id", 0, "Property id")
	cmd.Flags().StringVar(&category, "category", "", "exterior, interior or amenities")
	cmd.Flags().UintVar(&unitID, "unit-id", 0, "Unit id")
	_ = cmd.MarkFlagRequired("property-id")
	return cmd
}

// collectImages lists image files directly inside dir in name order
func collectImages(dir string) ([]photos.FileInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var files []photos.FileInput
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(e.Name())))
		if !strings.HasPrefix(contentType, "image/") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		full := filepath.Join(dir, e.Name())
		files = append(files, photos.FileInput{
			OriginalName: e.Name(),
			ContentType:  contentType,
			Size:         info.Size(),
			Open:         func() (io.ReadCloser, error) { return os.Open(full) },
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].OriginalName < files[j].OriginalName })
	return files, nil
}

func newSweepCmd(v *viper.Viper) *cobra.Command {
	var apply bool
	var maxDeletions int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Find photo directories with no matching property or unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Cleanup.Sweep(cmd.Context(), cleanup.CleanupConfig{
				MaxDeletionCount: maxDeletions,
				DryRun:           !apply,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, o := range result.Orphans {
				fmt.Fprintf(out, "%-16s %s\n", o.Reason, o.Directory)
			}
			if result.DryRun {
				fmt.Fprintf(out, "%d orphan directories (dry run, pass --apply to delete)\n", result.TargetCount)
				return nil
			}
			fmt.Fprintf(out, "deleted %d directories (%d files), %d errors\n",
				result.DeletedCount, result.FileCount, result.ErrorCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Delete the orphan directories")
	cmd.Flags().IntVar(&maxDeletions, "max", cleanup.DefaultCleanupConfig().MaxDeletionCount, "Refuse to delete more directories than this")
	return cmd
}

func newGeocodeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "geocode",
		Short: "Fill in coordinates for properties that have none",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer app.Close()

			if !app.Geocoder.Enabled() {
				return errors.New("GOOGLE_GEOCODING_API_KEY is not set")
			}
			result, err := app.Scheduler.RunGeocodeNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d properties, %d updated, %d failed in %dms\n",
				result.Total, result.Updated, result.Failed, result.DurationMs)
			return nil
		},
	}
}

func newCreateUserCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer app.Close()

			username := v.GetString("username")
			if err := auth.CreateUser(cmd.Context(), app.DB, username, v.GetString("password")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", username)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Login name")
	cmd.Flags().String("password", "", "Password, at least 8 characters (or PHOTOCTL_PASSWORD)")
	_ = v.BindPFlag("username", cmd.Flags().Lookup("username"))
	_ = v.BindPFlag("password", cmd.Flags().Lookup("password"))
	_ = v.BindEnv("password", "PHOTOCTL_PASSWORD")
	return cmd
}
