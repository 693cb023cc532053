package history

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reployer/internal/history/interfaces"
	"reployer/internal/models"
	"reployer/internal/providers"
	svcinterfaces "reployer/internal/services/interfaces"
	"reployer/internal/structures"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	NoPlayers      = "None"
	nameSeparator  = ", "
	maxLineBytes   = 1 << 20
	archiveSuffix  = ".csv.zst"
	archiveStampFt = "20060102T150405Z"
)

var Header = []string{"UTC Timestamp", "Player Count", "Map", "Players Online"}

var (
	ErrMalformedRecord = errors.New("malformed history record")
	errFieldCount      = fmt.Errorf("%w: expected %d fields", ErrMalformedRecord, len(Header))
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
}

// CSVStore is the append-only observation log plus the in-memory window
// replayed from it. It is the single writer of the log file.
type CSVStore struct {
	mu         sync.Mutex
	path       string
	archiveDir string
	maxBytes   int64
	window     *models.HistoryWindow
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	now        func() time.Time
}

func NewCSVStore(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) svcinterfaces.HistoryStoreInterface {
	return newCSVStore(conf, compressor, logger, metrics)
}

func newCSVStore(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *CSVStore {
	archiveDir := conf.History.ArchiveDir
	if archiveDir != "" && !filepath.IsAbs(archiveDir) {
		archiveDir = filepath.Join(filepath.Dir(conf.History.FilePath), archiveDir)
	}
	return &CSVStore{
		path:       conf.History.FilePath,
		archiveDir: archiveDir,
		maxBytes:   conf.History.MaxBytes,
		window:     models.NewHistoryWindow(conf.History.Capacity),
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Init creates the log with its header when it does not exist yet.
func (s *CSVStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, encodeLine(Header), 0644)
}

// Append pushes o into the window and appends it to the log. The window is
// updated even when the write fails.
func (s *CSVStore) Append(o models.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window.Push(o)

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open history log: %w", err)
	}

	var buf bytes.Buffer
	if info, statErr := file.Stat(); statErr == nil && info.Size() == 0 {
		buf.Write(encodeLine(Header))
	}
	buf.Write(encodeLine(EncodeRecord(o)))

	if _, err = file.Write(buf.Bytes()); err != nil {
		file.Close()
		return fmt.Errorf("write history log: %w", err)
	}
	return file.Close()
}

// LoadRecent returns at most maxCount valid records from the end of the
// log, oldest first. Malformed lines are skipped.
func (s *CSVStore) LoadRecent(maxCount int) ([]models.Observation, error) {
	if maxCount <= 0 {
		return []models.Observation{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	tail := models.NewHistoryWindow(maxCount)
	skipped := 0
	scanner := newLineScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if isHeader(line) || strings.TrimSpace(line) == "" {
			continue
		}
		o, err := ParseLine(line)
		if err != nil {
			skipped++
			continue
		}
		tail.Push(o)
	}
	if err := scanner.Err(); err != nil {
		return tail.Items(), fmt.Errorf("read history log: %w", err)
	}
	if skipped > 0 {
		s.logger.Warnf(providers.TypeHistory, "Skipped %d malformed lines in %s", skipped, s.path)
	}
	return tail.Items(), nil
}

func (s *CSVStore) Window() []models.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Items()
}

// Seed replays persisted observations into the window at startup.
func (s *CSVStore) Seed(items []models.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range items {
		s.window.Push(o)
	}
}

// Rotate moves all but the newest window-capacity lines into a zstd archive
// once the log exceeds maxBytes. The live log is swapped atomically.
func (s *CSVStore) Rotate() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxBytes <= 0 || s.archiveDir == "" {
		return false, nil
	}
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.Size() <= s.maxBytes {
		return false, nil
	}

	start := time.Now()
	lines, err := s.readLines()
	if err != nil {
		return false, err
	}
	keep := s.window.Cap()
	if len(lines) <= keep {
		return false, nil
	}
	archived, retained := lines[:len(lines)-keep], lines[len(lines)-keep:]

	archivePath, err := s.writeArchive(archived)
	if err != nil {
		return false, err
	}
	if err := writeAtomic(s.path, joinLines(retained)); err != nil {
		return false, err
	}

	s.metrics.ObserveRotationDuration(time.Since(start))
	s.logger.Infof(providers.TypeHistory, "Archived %d records to %s, kept %d", len(archived), archivePath, len(retained))
	return true, nil
}

// Archives lists archive files, oldest first.
func (s *CSVStore) Archives() ([]string, error) {
	if s.archiveDir == "" {
		return nil, nil
	}
	base := strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	return filepath.Glob(filepath.Join(s.archiveDir, base+"-*"+archiveSuffix))
}

// ReadArchive decodes one archive written by Rotate.
func (s *CSVStore) ReadArchive(path string) ([]models.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	plain, err := s.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}

	var out []models.Observation
	scanner := newLineScanner(bytes.NewReader(plain))
	for scanner.Scan() {
		if isHeader(scanner.Text()) {
			continue
		}
		if o, err := ParseLine(scanner.Text()); err == nil {
			out = append(out, o)
		}
	}
	return out, scanner.Err()
}

func (s *CSVStore) readLines() ([]string, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := newLineScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if isHeader(line) || strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func (s *CSVStore) writeArchive(lines []string) (string, error) {
	if err := os.MkdirAll(s.archiveDir, 0755); err != nil {
		return "", err
	}
	compressed, err := s.compressor.Compress(joinLines(lines))
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	path := filepath.Join(s.archiveDir, base+"-"+s.now().Format(archiveStampFt)+archiveSuffix)
	for i := 1; fileExists(path); i++ {
		path = filepath.Join(s.archiveDir, fmt.Sprintf("%s-%s.%d%s", base, s.now().Format(archiveStampFt), i, archiveSuffix))
	}
	return path, writeAtomic(path, compressed)
}

// EncodeRecord renders an observation as the four log fields.
func EncodeRecord(o models.Observation) []string {
	names := NoPlayers
	if len(o.PlayerNames) > 0 {
		clean := make([]string, len(o.PlayerNames))
		for i, n := range o.PlayerNames {
			clean[i] = strings.NewReplacer("\r", " ", "\n", " ").Replace(n)
		}
		names = strings.Join(clean, nameSeparator)
	}
	return []string{
		o.Timestamp.UTC().Format(time.RFC3339Nano),
		strconv.Itoa(o.Count()),
		o.MapName,
		names,
	}
}

// ParseLine decodes one log line.
func ParseLine(line string) (models.Observation, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		return models.Observation{}, fmt.Errorf("%w: %s", ErrMalformedRecord, err)
	}
	if len(fields) != len(Header) {
		return models.Observation{}, errFieldCount
	}

	ts, err := parseTimestamp(strings.TrimSpace(fields[0]))
	if err != nil {
		return models.Observation{}, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || count < 0 {
		return models.Observation{}, fmt.Errorf("%w: player count %q", ErrMalformedRecord, fields[1])
	}

	mapName := fields[2]
	if mapName == "" {
		mapName = models.UnknownMap
	}

	names := []string{}
	if fields[3] != "" && fields[3] != NoPlayers {
		names = strings.Split(fields[3], nameSeparator)
	}

	return models.Observation{
		Timestamp:   ts,
		PlayerCount: models.IntPtr(count),
		MapName:     mapName,
		PlayerNames: names,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.Replace(s, "Z", "+00:00", 1)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRecord, s)
}

func isHeader(line string) bool {
	return strings.HasPrefix(line, Header[0]+",")
}

func encodeLine(fields []string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(fields)
	w.Flush()
	return buf.Bytes()
}

func joinLines(lines []string) []byte {
	var buf bytes.Buffer
	buf.Write(encodeLine(Header))
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return scanner
}

func writeAtomic(path string, data []byte) error {
	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return os.Rename(tmpFile, path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
