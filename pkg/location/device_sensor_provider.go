package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// DeviceSensorProvider reads a fix from a GPS receiver attached to a serial port.
type DeviceSensorProvider struct {
	port     string
	baudRate int
	open     func(*serial.Config) (io.ReadCloser, error)
}

// NewDeviceSensorProvider creates a provider reading NMEA from port at baudRate.
func NewDeviceSensorProvider(port string, baudRate int) *DeviceSensorProvider {
	return &DeviceSensorProvider{
		port:     port,
		baudRate: baudRate,
		open: func(c *serial.Config) (io.ReadCloser, error) {
			return serial.OpenPort(c)
		},
	}
}

// GetLocation waits for the first GGA sentence with a valid fix.
func (d *DeviceSensorProvider) GetLocation(ctx context.Context) (Location, error) {
	c := &serial.Config{Name: d.port, Baud: d.baudRate}
	if deadline, ok := ctx.Deadline(); ok {
		c.ReadTimeout = time.Until(deadline)
	}
	port, err := d.open(c)
	if err != nil {
		return Location{}, fmt.Errorf("open gps port %s: %w", d.port, err)
	}

	type result struct {
		loc Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := ReadFix(port)
		done <- result{loc, err}
	}()

	select {
	case r := <-done:
		port.Close()
		return r.loc, r.err
	case <-ctx.Done():
		// Closing the port unblocks the reader.
		port.Close()
		return Location{}, ctx.Err()
	}
}

// ReadFix scans NMEA lines from r and returns the first GGA fix.
func ReadFix(r io.Reader) (Location, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}
		if sentence.DataType() != nmea.TypeGGA {
			continue
		}
		gga := sentence.(nmea.GGA)
		if gga.FixQuality == nmea.Invalid {
			continue
		}
		return Location{
			Latitude:  gga.Latitude,
			Longitude: gga.Longitude,
			Accuracy:  gga.HDOP,
		}, nil
	}
	if err := scanner.Err(); err != nil {
		return Location{}, err
	}
	return Location{}, errors.Join(ErrUnavailable, errors.New("no gga fix in gps stream"))
}
