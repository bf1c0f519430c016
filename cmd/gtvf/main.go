package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/gtvf"
	"github.com/opd-ai/gtvf/video"
)

// CLI configuration
type CLIConfig struct {
	command   string
	inputs    []string
	output    string
	outDir    string
	compress  bool
	channel   string
	scale     string
	fps       string
	png       bool
	pngPrefix string
	logLevel  string
	logFile   string
	logFormat string
	progress  bool
}

var commands = []string{"encode", "decode", "info", "verify"}

// newFlagSet builds the flag set for one subcommand. Logging flags are shared.
func newFlagSet(command string, config *CLIConfig, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(output)

	// Logging configuration
	fs.StringVar(&config.logLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&config.logFile, "log-file", "", "Log file path (default: stderr)")
	fs.StringVar(&config.logFormat, "log-format", "text", "Log format (text, json)")

	switch command {
	case "encode", "verify":
		fs.StringVar(&config.channel, "channel", video.ChannelRed.String(), "Sample taken from color images (red, luma)")
		fs.StringVar(&config.scale, "scale", "", "Resize frames to WIDTHxHEIGHT before encoding")
	case "decode":
		fs.StringVar(&config.fps, "fps", "30:1", "Frame rate written to YUV4MPEG2 output (N or N:D)")
		fs.BoolVar(&config.png, "png", false, "Write a directory of PNG images instead of YUV4MPEG2")
		fs.StringVar(&config.pngPrefix, "prefix", "frame", "File name prefix for PNG output")
	}

	switch command {
	case "encode", "decode":
		fs.StringVar(&config.output, "o", "", "Output path (single input only)")
		fs.StringVar(&config.outDir, "out-dir", ".", "Directory for outputs named after their inputs")
		fs.BoolVar(&config.compress, "zstd", false, "Compress outputs with Zstandard (.zst suffix)")
		fs.BoolVar(&config.progress, "progress", false, "Print a line per processed frame")
	}

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: gtvf %s [options] input...\n\nOptions:\n", command)
		fs.PrintDefaults()
	}
	return fs
}

// parseCLIArgs parses the subcommand and its flags.
func parseCLIArgs(args []string, output io.Writer) (*CLIConfig, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing command (want one of %s)", strings.Join(commands, ", "))
	}

	config := &CLIConfig{command: args[0]}
	known := false
	for _, c := range commands {
		known = known || c == config.command
	}
	if !known {
		return nil, fmt.Errorf("unknown command %q (want one of %s)", config.command, strings.Join(commands, ", "))
	}

	fs := newFlagSet(config.command, config, output)
	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	config.inputs = fs.Args()
	return config, nil
}

// printUsage prints the usage information.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "GTVF grayscale run-length video tool")
	fmt.Fprintln(w, "====================================")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gtvf encode [options] input.y4m|'frames/*.png'...")
	fmt.Fprintln(w, "  gtvf decode [options] input.gtvf...")
	fmt.Fprintln(w, "  gtvf info   input.gtvf...")
	fmt.Fprintln(w, "  gtvf verify [options] input.y4m|'frames/*.png'...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'gtvf <command> -h' for the options of a command.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  # Encode a clip into out/clip.gtvf.zst")
	fmt.Fprintln(w, "  gtvf encode -zstd -out-dir out clip.y4m")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Decode to a directory of PNG images")
	fmt.Fprintln(w, "  gtvf decode -png -out-dir frames clip.gtvf")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Encode an image sequence using BT.601 luma, 320x240")
	fmt.Fprintln(w, "  gtvf encode -channel luma -scale 320x240 'shots/*.png'")
}

// parseScale parses WIDTHxHEIGHT. An empty string means no scaling.
func parseScale(s string) (width, height int, err error) {
	if s == "" {
		return 0, 0, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid scale %q: want WIDTHxHEIGHT", s)
	}
	if width, err = strconv.Atoi(ws); err != nil {
		return 0, 0, fmt.Errorf("invalid scale width %q: %w", ws, err)
	}
	if height, err = strconv.Atoi(hs); err != nil {
		return 0, 0, fmt.Errorf("invalid scale height %q: %w", hs, err)
	}
	return width, height, nil
}

// parseFrameRate parses N or N:D.
func parseFrameRate(s string) (video.Y4MOptions, error) {
	num, den, found := strings.Cut(s, ":")
	if !found {
		den = "1"
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return video.Y4MOptions{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return video.Y4MOptions{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	opts := video.Y4MOptions{FrameRateNum: n, FrameRateDen: d}
	return opts, opts.Validate()
}

// validateCLIConfig validates the CLI configuration.
func validateCLIConfig(config *CLIConfig) error {
	if len(config.inputs) == 0 {
		return fmt.Errorf("%s needs at least one input", config.command)
	}
	if config.output != "" && len(config.inputs) > 1 {
		return fmt.Errorf("-o cannot be used with %d inputs", len(config.inputs))
	}
	if _, err := logrus.ParseLevel(config.logLevel); err != nil {
		return err
	}
	if config.logFormat != "text" && config.logFormat != "json" {
		return fmt.Errorf("invalid log format %q: want text or json", config.logFormat)
	}

	switch config.command {
	case "encode", "verify":
		_, err := createEncodeOptions(config)
		return err
	case "decode":
		_, err := createDecodeOptions(config)
		return err
	}
	return nil
}

// createEncodeOptions converts CLI configuration to encoder options.
func createEncodeOptions(config *CLIConfig) (*gtvf.EncodeOptions, error) {
	ch, err := video.ParseChannel(config.channel)
	if err != nil {
		return nil, err
	}
	width, height, err := parseScale(config.scale)
	if err != nil {
		return nil, err
	}
	opts := &gtvf.EncodeOptions{Channel: ch, ScaleWidth: width, ScaleHeight: height}
	return opts, opts.Validate()
}

// createDecodeOptions converts CLI configuration to decoder options.
func createDecodeOptions(config *CLIConfig) (*gtvf.DecodeOptions, error) {
	rate, err := parseFrameRate(config.fps)
	if err != nil {
		return nil, err
	}
	opts := &gtvf.DecodeOptions{FrameRate: rate, PNGPrefix: config.pngPrefix}
	return opts, opts.Validate()
}

// setupLogging configures the global logger. The returned function closes
// the log file, if any.
func setupLogging(config *CLIConfig, stderr io.Writer) (func(), error) {
	level, err := logrus.ParseLevel(config.logLevel)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)

	if config.logFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if config.logFile == "" {
		logrus.SetOutput(stderr)
		return func() {}, nil
	}
	logFile, err := os.OpenFile(config.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logrus.SetOutput(logFile)
	return func() {
		logrus.SetOutput(stderr)
		logFile.Close()
	}, nil
}

// outputFor names the output of one input. Glob inputs are named after
// their directory.
func outputFor(config *CLIConfig, input, ext string) string {
	if config.output != "" {
		return config.output
	}
	if config.compress && ext != "" {
		ext += video.CompressedExt
	}
	if strings.ContainsAny(input, "*?[") {
		name := filepath.Base(filepath.Dir(input))
		if name == "." || name == string(filepath.Separator) {
			name = "sequence"
		}
		return filepath.Join(config.outDir, name+ext)
	}
	return video.OutputPath(input, config.outDir, ext)
}

// setupSignalHandling cancels ctx on interrupt.
func setupSignalHandling(cancel context.CancelFunc, stderr io.Writer) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		fmt.Fprintf(stderr, "\n🛑 Received signal %v, stopping after the current frame...\n", sig)
		cancel()
	}()
	return func() {
		signal.Stop(sigChan)
		close(sigChan)
	}
}

// runCommand executes the configured command over every input.
func runCommand(ctx context.Context, config *CLIConfig, stdout io.Writer) error {
	t := gtvf.NewTranscoder()
	if config.progress {
		t.OnProgress(func(p gtvf.Progress) {
			fmt.Fprintf(stdout, "  %s frame %d (%d bytes, %v)\n", p.Op, p.Frames, p.Bytes, p.Elapsed)
		})
	}

	var failed []string
	for _, input := range config.inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runOne(ctx, t, config, input, stdout); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "runCommand",
				"command":  config.command,
				"input":    input,
				"error":    err.Error(),
			}).Error("Command failed")
			fmt.Fprintf(stdout, "❌ %s: %v\n", input, err)
			failed = append(failed, input)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%s failed for %d of %d inputs", config.command, len(failed), len(config.inputs))
	}
	return nil
}

func runOne(ctx context.Context, t *gtvf.Transcoder, config *CLIConfig, input string, stdout io.Writer) error {
	switch config.command {
	case "encode":
		opts, err := createEncodeOptions(config)
		if err != nil {
			return err
		}
		output := outputFor(config, input, gtvf.ExtGTVF)
		result, err := t.EncodeFile(ctx, input, output, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "✅ %s -> %s: %s, %d frames, %d bytes, ratio %.2f, %.1f fps\n",
			input, output, result.Header, result.Stats.Frames, result.Stats.Bytes,
			result.Stats.CompressionRatio(), result.FramesPerSecond())

	case "decode":
		opts, err := createDecodeOptions(config)
		if err != nil {
			return err
		}
		ext := gtvf.ExtY4M
		if config.png {
			ext = ""
		}
		output := outputFor(config, input, ext)
		result, err := t.DecodeFile(ctx, input, output, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "✅ %s -> %s: %s, %d frames, %.1f fps\n",
			input, output, result.Header, result.Stats.Frames, result.FramesPerSecond())

	case "info":
		info, err := gtvf.InspectFile(input)
		if info != nil {
			fmt.Fprintf(stdout, "%s: %s\n", input, info)
		}
		return err

	case "verify":
		opts, err := createEncodeOptions(config)
		if err != nil {
			return err
		}
		result, err := t.VerifyFile(ctx, input, opts)
		if err != nil && !errors.Is(err, gtvf.ErrVerifyMismatch) {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d frames, source %s, decoded %s\n",
			input, result.Encode.Stats.Frames, result.SourceDigest, result.DecodedDigest)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "✅ %s: round trip is lossless\n", input)
	}
	return nil
}

// run is main without the process exit, returning the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && (args[0] == "-h" || args[0] == "-help" || args[0] == "help") {
		printUsage(stdout)
		return 0
	}

	config, err := parseCLIArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "❌ %v\n", err)
		printUsage(stderr)
		return 2
	}

	if err := validateCLIConfig(config); err != nil {
		fmt.Fprintf(stderr, "❌ Configuration error: %v\n", err)
		fmt.Fprintf(stderr, "Use 'gtvf %s -h' for usage information.\n", config.command)
		return 2
	}

	closeLog, err := setupLogging(config, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopSignals := setupSignalHandling(cancel, stderr)
	defer stopSignals()

	if err := runCommand(ctx, config, stdout); err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 1
	}
	return 0
}

// main is the entry point for the gtvf tool.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
