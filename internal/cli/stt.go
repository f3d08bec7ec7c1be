package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/voxbridge/voxbridge/internal/audio"
	"github.com/voxbridge/voxbridge/internal/logging"
	"github.com/voxbridge/voxbridge/internal/version"
	"github.com/voxbridge/voxbridge/internal/whisper"
)

type sttState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool

	modelPath   string
	audioPath   string
	language    string
	computeType string
	beamSize    int
	temperature float64
	partial     bool

	logger *zap.Logger

	newEngine func(*zap.Logger) (whisper.Engine, error)
}

// transcriptionResult is the stdout contract: text always present,
// confidence only when the engine reported token probabilities.
type transcriptionResult struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func NewSTTCmd() *cobra.Command {
	return newSTTCmd(&sttState{
		newEngine: func(logger *zap.Logger) (whisper.Engine, error) {
			return whisper.NewExecEngine(logger)
		},
	})
}

func newSTTCmd(app *sttState) *cobra.Command {
	if app.computeType == "" {
		app.computeType = string(whisper.DefaultPrecision)
	}
	if app.beamSize == 0 {
		app.beamSize = 1
	}

	cmd := &cobra.Command{
		Use:           "voxbridge-stt",
		Short:         "Transcribe a recorded audio file and emit one JSON result line",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd)
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, &app.verbose, &app.jsonLogs)
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", false, "Disable the progress spinner")
	cmd.Flags().StringVar(&app.modelPath, "model", "", "Path to the whisper model file")
	cmd.Flags().StringVar(&app.audioPath, "audio", "", "Path to the input audio file")
	cmd.Flags().StringVar(&app.language, "language", "", "Force the recognition language (two-letter code)")
	cmd.Flags().StringVar(&app.computeType, "compute-type", app.computeType, "Engine precision mode: int8|float16|float32")
	cmd.Flags().IntVar(&app.beamSize, "beam-size", app.beamSize, "Search beam width")
	cmd.Flags().Float64Var(&app.temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().BoolVar(&app.partial, "partial", false, "Hint that this request is for an interim transcript")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("audio")

	return cmd
}

func (a *sttState) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	engine, err := a.newEngine(a.logger)
	if err != nil {
		if errors.Is(err, whisper.ErrEngineUnavailable) {
			return reportStructured(cmd.ErrOrStderr(), StatusMissingDependency,
				"whisper engine not available", err.Error(), err)
		}
		return err
	}

	precision, err := whisper.ParsePrecision(a.computeType)
	if err != nil {
		return err
	}

	if a.partial {
		a.log().Debug("interim transcript requested; treating as a full transcription")
	}
	a.probeAudio()

	cache := whisper.NewCache(engine.LoadModel)
	model, err := cache.Acquire(ctx, a.modelPath, precision)
	if err != nil {
		return err
	}

	a.log().Info("transcribing",
		zap.String("audio", a.audioPath),
		zap.String("model", model.Path),
		zap.String("compute_type", string(model.Precision)),
		zap.String("language", a.language),
		zap.Int("beam_size", a.beamSize),
	)

	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()
	result, err := engine.Transcribe(ctx, model, whisper.Request{
		AudioPath:   a.audioPath,
		Language:    a.language,
		BeamSize:    a.beamSize,
		Temperature: a.temperature,
	})
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return err
	}
	a.log().Info("transcription finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("segments", len(result.Segments)),
	)

	out := transcriptionResult{Text: whisper.CollapseSegments(result.Segments)}
	if result.AvgLogProb != nil {
		confidence := whisper.ConfidenceFromLogProb(*result.AvgLogProb)
		out.Confidence = &confidence
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
}

// probeAudio logs the input format when the file is a WAV. The engine is
// the authority on whether the audio is usable, so probe failures only
// warn.
func (a *sttState) probeAudio() {
	if !strings.EqualFold(filepath.Ext(a.audioPath), ".wav") {
		return
	}

	info, err := audio.ProbeWAV(a.audioPath)
	if err != nil {
		a.log().Warn("could not probe input audio", zap.String("audio", a.audioPath), zap.Error(err))
		return
	}

	a.log().Debug("input audio",
		zap.Int("sample_rate", info.SampleRate),
		zap.Int("channels", info.Channels),
		zap.Int("bit_depth", info.BitDepth),
		zap.Duration("duration", info.Duration),
	)
}

func (a *sttState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *sttState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func bindLoggingFlags(cmd *cobra.Command, verbose, jsonLogs *bool) {
	cmd.Flags().BoolVar(verbose, "verbose", false, "Enable verbose logs")
	cmd.Flags().BoolVar(jsonLogs, "log-json", false, "Emit logs as JSON")
}
