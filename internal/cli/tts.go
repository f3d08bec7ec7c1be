package cli

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voxbridge/voxbridge/internal/audio"
	"github.com/voxbridge/voxbridge/internal/logging"
	"github.com/voxbridge/voxbridge/internal/synth"
	"github.com/voxbridge/voxbridge/internal/version"
)

type ttsState struct {
	verbose  bool
	jsonLogs bool
	dumpWAV  string

	logger *zap.Logger
}

func NewTTSCmd() *cobra.Command {
	app := &ttsState{}

	cmd := &cobra.Command{
		Use:           "voxbridge-tts",
		Short:         "Convert a JSON synthesis request on stdin into silent placeholder audio",
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
	cmd.Flags().StringVar(&app.dumpWAV, "dump-wav", "", "Also write the payload to this path as a 16-bit WAV file")

	return cmd
}

func (a *ttsState) run(cmd *cobra.Command) error {
	req, err := synth.DecodeRequest(cmd.InOrStdin())
	if err != nil {
		return reportStructured(cmd.ErrOrStderr(), StatusFailure, err.Error(), "", err)
	}

	pcm := synth.Synthesize(req)
	a.log().Debug("synthesized placeholder audio",
		zap.Int("sample_rate", req.SampleRate),
		zap.Int("channels", req.Channels),
		zap.Int("text_chars", utf8.RuneCountInString(req.Text)),
		zap.Int("pcm_bytes", len(pcm)),
	)

	if a.dumpWAV != "" {
		if err := audio.WritePCMWAV(a.dumpWAV, pcm, req.SampleRate, req.Channels); err != nil {
			return err
		}
		a.log().Info("wrote debug wav", zap.String("path", a.dumpWAV))
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(synth.EncodeResult(pcm))
}

func (a *ttsState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}
