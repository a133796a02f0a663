package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"livewall/internal/domain"
)

// memLedger is an in-memory port.Ledger for service tests.
type memLedger struct {
	mu       sync.Mutex
	backups  []domain.BackupRecord
	installs []domain.InstallRecord
}

func (m *memLedger) RecordBackup(rec *domain.BackupRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.backups) + 1)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.backups = append(m.backups, *rec)
	return nil
}

func (m *memLedger) RecordInstall(rec *domain.InstallRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.installs) + 1)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.installs = append(m.installs, *rec)
	return nil
}

func (m *memLedger) ListBackups(assetName string) ([]domain.BackupRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BackupRecord
	for _, b := range m.backups {
		if b.SourceAssetName == assetName {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memLedger) ListInstalls(int) ([]domain.InstallRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.InstallRecord(nil), m.installs...), nil
}

func (m *memLedger) Close() error { return nil }

// fakePrompter scripts answers. Ask/Confirm/Select consume their queues in
// call order; an exhausted queue fails the test.
type fakePrompter struct {
	t *testing.T

	askFn     func(question string) (string, error)
	confirms  []bool
	selects   []int
	selectErr error

	askCalls     int
	confirmCalls int
	selectCalls  int
}

func (p *fakePrompter) Ask(question string) (string, error) {
	p.askCalls++
	if p.askFn != nil {
		return p.askFn(question)
	}
	return "", nil
}

func (p *fakePrompter) Confirm(string) (bool, error) {
	p.confirmCalls++
	if len(p.confirms) == 0 {
		p.t.Fatal("unexpected Confirm call")
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

func (p *fakePrompter) Select(_ string, options []string) (int, error) {
	p.selectCalls++
	if p.selectErr != nil {
		return 0, p.selectErr
	}
	if len(p.selects) == 0 {
		p.t.Fatal("unexpected Select call")
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	if v < 0 || v >= len(options) {
		p.t.Fatalf("scripted selection %d out of range (%d options)", v, len(options))
	}
	return v, nil
}

// fakeRefresher records calls; Refresh reports two successful nudges.
type fakeRefresher struct {
	refreshCalls int
	openCalls    int
}

func (r *fakeRefresher) Refresh(context.Context) int {
	r.refreshCalls++
	return 2
}

func (r *fakeRefresher) OpenWallpaperSettings(context.Context) error {
	r.openCalls++
	return nil
}

// fakeTranscoder implements port.Transcoder with scripted behavior. Defaults
// write plausible output files.
type fakeTranscoder struct {
	probeResult *domain.ProbeResult
	probeErr    error

	extendOutput    []byte
	extendErr       error
	extendCalls     int
	extendMinSecs   float64
	transcodeOutput []byte
	transcodeErr    error
	transcodeCalls  int
	transcodeInputs []string
}

func (f *fakeTranscoder) Probe(_ context.Context, _ string) (*domain.ProbeResult, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	if f.probeResult != nil {
		return f.probeResult, nil
	}
	return &domain.ProbeResult{}, nil
}

func (f *fakeTranscoder) ExtendLoop(_ context.Context, _, outputPath string, minSeconds float64) error {
	f.extendCalls++
	f.extendMinSecs = minSeconds
	if f.extendErr != nil {
		return f.extendErr
	}
	data := f.extendOutput
	if data == nil {
		data = []byte("extended-stream-copy-loop-output-filler-bytes")
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func (f *fakeTranscoder) Transcode(_ context.Context, inputPath, outputPath string) error {
	f.transcodeCalls++
	f.transcodeInputs = append(f.transcodeInputs, inputPath)
	if f.transcodeErr != nil {
		return f.transcodeErr
	}
	data := f.transcodeOutput
	if data == nil {
		data = []byte("hevc-10bit-wallpaper-output-with-enough-bytes-to-pass-the-ratio-check")
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// fakeFetcher writes a source file into destDir and returns its metadata.
type fakeFetcher struct {
	title    string
	duration float64
	height   int
	content  []byte
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context, url, destDir string) (*domain.SourceVideo, error) {
	if f.err != nil {
		return nil, f.err
	}
	content := f.content
	if content == nil {
		content = []byte("downloaded-source-video-bytes-0123456789")
	}
	path := filepath.Join(destDir, "source_2160p.mp4")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, err
	}
	return &domain.SourceVideo{
		Path:            path,
		Title:           f.title,
		URL:             url,
		DurationSeconds: f.duration,
		HeightPixels:    f.height,
		Container:       "mp4",
	}, nil
}

// writeAsset creates a wallpaper asset file with a distinct modtime.
func writeAsset(t *testing.T, dir, name string, content []byte, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	mt := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mt, mt))
	return path
}

// userNormalizer returns a Normalizer that believes it is not elevated, so
// tests never chown.
func userNormalizer() *Normalizer {
	n := NewNormalizer()
	n.geteuid = func() int { return 1000 }
	return n
}

func fileContent(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func modTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime()
}

func fmtAssetName(i int) string {
	return fmt.Sprintf("Asset %d.mov", i)
}
