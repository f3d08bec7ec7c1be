package whisper

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const enginePathEnv = "VOXBRIDGE_WHISPER_PATH"

// ggml model files start with this magic, stored little-endian.
const ggmlMagic = 0x67676d6c

var (
	// ErrEngineUnavailable reports that the whisper engine binary could
	// not be resolved or started. Callers treat this as a
	// missing-dependency condition, distinct from runtime engine failures.
	ErrEngineUnavailable = errors.New("whisper engine unavailable")

	// ErrModelLoad reports that a model could not be loaded from disk.
	ErrModelLoad = errors.New("model load failed")
)

// ExecEngine binds to an external whisper-cli binary and runs one
// transcription per invocation.
type ExecEngine struct {
	Executable string
	Logger     *zap.Logger
}

func NewExecEngine(logger *zap.Logger) (*ExecEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv(enginePathEnv)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("%w: %s from %s is not executable: %v", ErrEngineUnavailable, override, enginePathEnv, err)
		}
		return &ExecEngine{Executable: override, Logger: logger}, nil
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: resolve adapter executable path: %v", ErrEngineUnavailable, err)
	}

	engineExe, err := ResolveEnginePath(self)
	if err != nil {
		return nil, err
	}

	return &ExecEngine{Executable: engineExe, Logger: logger}, nil
}

// ResolveEnginePath locates the whisper engine binary installed next to
// the adapter executable.
func ResolveEnginePath(adapterExecutable string) (string, error) {
	for _, candidate := range EnginePathCandidates(adapterExecutable) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no %s found near %s; set %s to point at a whisper-cli build",
		ErrEngineUnavailable, engineBinaryName(), adapterExecutable, enginePathEnv)
}

func EnginePathCandidates(adapterExecutable string) []string {
	binDir := filepath.Dir(adapterExecutable)
	engineName := engineBinaryName()

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, engineName),
	}
}

// LoadModel validates the model file and constructs the process-wide
// handle for it. The heavyweight load happens inside the engine binary on
// the first transcription; what must fail here is anything that would make
// that invocation pointless: a missing or empty file, a directory, or a
// file that is not a ggml model.
func (e *ExecEngine) LoadModel(ctx context.Context, path string, precision Precision) (*Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrModelLoad, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrModelLoad, path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrModelLoad, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrModelLoad, path, err)
	}
	defer f.Close()

	var magic uint32
	if err := binary.Read(f, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", ErrModelLoad, path, err)
	}
	if magic != ggmlMagic {
		return nil, fmt.Errorf("%w: %s is not a ggml model file", ErrModelLoad, path)
	}

	e.logger().Debug("model validated",
		zap.String("model", path),
		zap.String("compute_type", string(precision)),
		zap.Int64("size_bytes", info.Size()),
	)

	return &Model{Path: path, Precision: precision}, nil
}

func (e *ExecEngine) Transcribe(ctx context.Context, model *Model, req Request) (Result, error) {
	if model == nil {
		return Result{}, errors.New("model handle is required")
	}
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, errors.New("audio path is required")
	}
	if req.BeamSize < 1 {
		return Result{}, fmt.Errorf("beam size must be positive, got %d", req.BeamSize)
	}
	if req.Temperature < 0 {
		return Result{}, fmt.Errorf("temperature must be non-negative, got %g", req.Temperature)
	}

	if err := ensureExecutable(e.Executable); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrEngineUnavailable, e.Executable, err)
	}

	outBase := filepath.Join(os.TempDir(), "voxbridge-"+uuid.NewString())
	jsonOut := outBase + ".json"

	args := []string{
		"-m", model.Path,
		"-f", req.AudioPath,
		"--beam-size", strconv.Itoa(req.BeamSize),
		"--temperature", strconv.FormatFloat(req.Temperature, 'f', -1, 64),
		"--output-json",
		"--output-json-full",
		"--no-prints",
		"-of", outBase,
	}
	if lang := strings.TrimSpace(req.Language); lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.logger().Debug("running whisper engine", zap.String("engine", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return Result{}, fmt.Errorf("%w: engine at %s is missing required shared libraries (%s)", ErrEngineUnavailable, e.Executable, errText)
		}
		if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
			return Result{}, fmt.Errorf("whisper engine crashed with an illegal CPU instruction; set %s to a whisper-cli binary built for this CPU", enginePathEnv)
		}
		return Result{}, fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
	}

	defer os.Remove(jsonOut)
	payload, err := os.ReadFile(jsonOut)
	if err != nil {
		return Result{}, fmt.Errorf("read engine output: %w", err)
	}

	return parseEngineOutput(payload)
}

func (e *ExecEngine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

type engineOutput struct {
	Transcription []engineSegment `json:"transcription"`
}

type engineSegment struct {
	Text    string        `json:"text"`
	Offsets engineOffsets `json:"offsets"`
	Tokens  []engineToken `json:"tokens"`
}

type engineOffsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type engineToken struct {
	Text string  `json:"text"`
	P    float64 `json:"p"`
}

// parseEngineOutput maps the engine's JSON transcript onto ordered
// segments. The average log-probability is the mean of ln(p) over every
// reported token; when the engine reports no tokens it stays unset rather
// than defaulting to zero.
func parseEngineOutput(payload []byte) (Result, error) {
	var out engineOutput
	if err := json.Unmarshal(payload, &out); err != nil {
		return Result{}, fmt.Errorf("decode engine output: %w", err)
	}

	result := Result{Segments: make([]Segment, 0, len(out.Transcription))}
	var logProbSum float64
	var tokens int

	for _, seg := range out.Transcription {
		result.Segments = append(result.Segments, Segment{
			Text:  seg.Text,
			Start: time.Duration(seg.Offsets.From) * time.Millisecond,
			End:   time.Duration(seg.Offsets.To) * time.Millisecond,
		})
		for _, token := range seg.Tokens {
			if token.P <= 0 {
				continue
			}
			logProbSum += math.Log(token.P)
			tokens++
		}
	}

	if tokens > 0 {
		avg := logProbSum / float64(tokens)
		result.AvgLogProb = &avg
	}

	return result, nil
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
