// internal/input/hid.go
package input

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chakram-cli/internal/geom"
)

// hidSource reads raw HID reports from a device identified by VID/PID. Report
// reads block, so a goroutine keeps the latest report in a mailbox and Poll
// only ever reads the mailbox.
type hidSource struct {
	device *hid.Device
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	report []byte

	done chan struct{}
	wg   sync.WaitGroup
}

func newHID(cfg Config, logger *zap.Logger) (Source, error) {
	if cfg.VendorID == 0 {
		return nil, fmt.Errorf("input: hid driver needs vendor_id and product_id")
	}
	infos := hid.Enumerate(cfg.VendorID, cfg.ProductID)
	if len(infos) == 0 {
		return nil, fmt.Errorf("input: no HID device %04x:%04x", cfg.VendorID, cfg.ProductID)
	}

	device, err := infos[0].Open()
	if err != nil {
		return nil, fmt.Errorf("input: open HID device: %w", err)
	}
	logger.Info("hid device opened",
		zap.String("product", infos[0].Product),
		zap.String("path", infos[0].Path))

	s := &hidSource{
		device: device,
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.readLoop()
	return s, nil
}

func (s *hidSource) readLoop() {
	defer s.wg.Done()
	buf := make([]byte, 64)
	for {
		select {
		case <-s.done:
			return
		default:
		}
		n, err := s.device.Read(buf)
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			s.logger.Warn("hid read failed", zap.Error(err))
			continue
		}
		report := make([]byte, n)
		copy(report, buf[:n])
		s.mu.Lock()
		s.report = report
		s.mu.Unlock()
	}
}

func (s *hidSource) Poll() (Sample, error) {
	s.mu.Lock()
	report := s.report
	s.mu.Unlock()

	sample := Sample{Time: time.Now()}
	if report == nil {
		// No report yet: centered stick.
		return sample, nil
	}

	need := s.cfg.ReportYOffset + 2
	if o := s.cfg.ReportXOffset + 2; o > need {
		need = o
	}
	if s.cfg.ReportButtonOffset+1 > need {
		need = s.cfg.ReportButtonOffset + 1
	}
	if len(report) < need {
		return sample, fmt.Errorf("input: HID report too short: %d < %d", len(report), need)
	}

	x := int16(binary.LittleEndian.Uint16(report[s.cfg.ReportXOffset:]))
	y := int16(binary.LittleEndian.Uint16(report[s.cfg.ReportYOffset:]))
	sample.Pos = geom.Vector2D{X: normalizeAxis(x), Y: normalizeAxis(y)}.Clamp(-1, 1)
	sample.AltHeld = report[s.cfg.ReportButtonOffset]&s.cfg.AltButtonMask != 0
	return sample, nil
}

func (s *hidSource) Close() error {
	close(s.done)
	err := s.device.Close()
	s.wg.Wait()
	return err
}
