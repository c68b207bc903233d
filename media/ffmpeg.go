// Package media drives the external ffmpeg tool: concatenating staged
// records into output files and repairing raw camera streams into a
// concatenable container.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/whisper-darkly/recfetch/logger"
)

const tool = "ffmpeg"

// Check verifies the transcoder is on the execution path. A fetch run
// without it is pointless, so callers treat this as fatal.
func Check() error {
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", tool, err)
	}
	return nil
}

// Concat merges the given local files, in order, into outPath. The file
// list is written as a concat-demuxer manifest next to the output and
// removed afterwards. With no filters the streams are copied unchanged
// (no re-encode); filters force a re-encode with the filter chain applied.
func Concat(ctx context.Context, files, filters []string, outPath string, log *logger.Logger) error {
	if len(files) == 0 {
		return fmt.Errorf("nothing to concatenate")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	manifest := outPath + ".concat.txt"
	if err := writeManifest(manifest, files); err != nil {
		return err
	}
	defer os.Remove(manifest)

	args := []string{
		"-y", "-hide_banner", "-loglevel", "warning",
		"-f", "concat", "-safe", "0",
		"-i", manifest,
	}
	if len(filters) > 0 {
		args = append(args,
			"-vf", strings.Join(filters, ","),
			"-c:v", "libx264",
			"-c:a", "aac",
		)
	} else {
		args = append(args, "-c", "copy")
	}
	args = append(args, outPath)

	return run(ctx, args, log)
}

// Repair rewrites a raw segment's container in place: remux into a
// temporary file, then atomically replace the original. Stream data is
// copied untouched.
func Repair(ctx context.Context, path string, log *logger.Logger) error {
	tmp := path + ".repaired" + filepath.Ext(path)

	args := []string{
		"-y", "-hide_banner", "-loglevel", "warning",
		"-i", path,
		"-c", "copy",
		tmp,
	}
	if err := run(ctx, args, log); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func writeManifest(path string, files []string) error {
	var sb strings.Builder
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		fmt.Fprintf(&sb, "file '%s'\n", abs)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return nil
}

func run(ctx context.Context, args []string, log *logger.Logger) error {
	log.Debug("%s %s", tool, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stderr = log.Writer(logger.LevelWarn)
	cmd.Stdout = log.Writer(logger.LevelDebug)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", tool, err)
	}
	return nil
}
