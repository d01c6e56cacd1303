// Package host drives the controller from the CPU side of the bus, the way a
// machine's disk ROM does.
package host

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"upd765/fdc"
)

// Bus is the register pair the controller exposes to the CPU.
type Bus interface {
	ReadMainStatus() byte
	ReadData() byte
	WriteData(b byte)
}

// ErrTimeout is returned when the controller never raises request for master.
var ErrTimeout = errors.New("fdc: timeout waiting for request for master")

// Default number of status reads before giving up.
const defaultPolls = 10000

// Gap 3 length used by AMSDOS for reads and writes.
const readWriteGap = 0x2a

// ResultError reports a command that ended with a non-zero interrupt code.
type ResultError struct {
	Command string
	Result  []byte
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("fdc: %s failed: ST0=%02X ST1=%02X ST2=%02X", e.Command, e.ST0(), e.ST1(), e.ST2())
}

func (e *ResultError) at(i int) byte {
	if i < len(e.Result) {
		return e.Result[i]
	}
	return 0
}

// ST0 returns status register 0 from the result.
func (e *ResultError) ST0() byte { return e.at(0) }

// ST1 returns status register 1 from the result.
func (e *ResultError) ST1() byte { return e.at(1) }

// ST2 returns status register 2 from the result.
func (e *ResultError) ST2() byte { return e.at(2) }

// NotReady reports whether the drive had no disk.
func (e *ResultError) NotReady() bool {
	return e.ST0()&fdc.ST0NotReady != 0
}

// Client issues complete commands over a Bus.
type Client struct {
	bus Bus

	// MaxPolls bounds every wait for request for master.
	MaxPolls int

	// MFM selects double density for the read commands.
	MFM bool
}

// NewClient returns a client talking to bus.
func NewClient(bus Bus) *Client {
	return &Client{bus: bus, MaxPolls: defaultPolls, MFM: true}
}

// wait polls the main status register until the controller requests a
// transfer, and checks it is in the expected direction.
func (c *Client) wait(out bool) (byte, error) {
	for i := 0; i < c.MaxPolls; i++ {
		status := c.bus.ReadMainStatus()
		if status&fdc.MSRRequest == 0 {
			continue
		}
		if (status&fdc.MSRDataOut != 0) != out {
			return status, errors.Errorf("fdc: unexpected data direction, status %02X", status)
		}
		return status, nil
	}
	return 0, ErrTimeout
}

func (c *Client) send(b ...byte) error {
	for _, v := range b {
		if _, err := c.wait(false); err != nil {
			return errors.Wrapf(err, "sending %02X", v)
		}
		c.bus.WriteData(v)
	}
	return nil
}

// execution reads data bytes while the controller is in the execution phase.
func (c *Client) execution() []byte {
	var data []byte
	for i := 0; i <= 0x8000; i++ {
		status := c.bus.ReadMainStatus()
		if status&fdc.MSRExecution == 0 || status&fdc.MSRDataOut == 0 {
			break
		}
		data = append(data, c.bus.ReadData())
	}
	return data
}

// result reads result bytes until the controller is no longer busy.
func (c *Client) result() ([]byte, error) {
	var res []byte
	for len(res) < 16 {
		status := c.bus.ReadMainStatus()
		if status&fdc.MSRBusy == 0 {
			return res, nil
		}
		if _, err := c.wait(true); err != nil {
			return res, err
		}
		res = append(res, c.bus.ReadData())
	}
	return res, errors.New("fdc: result phase did not end")
}

func checkResult(name string, res []byte) error {
	if len(res) == 0 {
		return errors.Errorf("fdc: %s returned no result", name)
	}
	if res[0]&fdc.ST0InterruptCode != 0 {
		return &ResultError{Command: name, Result: res}
	}
	return nil
}

func (c *Client) density() byte {
	if c.MFM {
		return 0x40
	}
	return 0
}

func unit(drive int, head byte) byte {
	return byte(drive&3) | (head&1)<<2
}

// Specify sets step rate, head unload and head load times.
func (c *Client) Specify(srtHut, hltND byte) error {
	return c.send(fdc.CmdSpecify, srtHut, hltND)
}

// SenseInterrupt returns ST0 and the present cylinder. pcn is only valid when
// ST0 reports seek end.
func (c *Client) SenseInterrupt() (st0, pcn byte, err error) {
	if err := c.send(fdc.CmdSenseInterrupt); err != nil {
		return 0, 0, err
	}
	res, err := c.result()
	if err != nil {
		return 0, 0, err
	}
	if len(res) == 0 {
		return 0, 0, errors.New("fdc: sense interrupt returned no result")
	}
	if len(res) > 1 {
		pcn = res[1]
	}
	return res[0], pcn, nil
}

// Recalibrate moves the head to track 0 and acknowledges the interrupt.
func (c *Client) Recalibrate(drive int) error {
	if err := c.send(fdc.CmdRecalibrate, unit(drive, 0)); err != nil {
		return err
	}
	return c.seekEnd("recalibrate", 0)
}

// Seek moves the head to cylinder and acknowledges the interrupt.
func (c *Client) Seek(drive int, cylinder byte) error {
	if err := c.send(fdc.CmdSeek, unit(drive, 0), cylinder); err != nil {
		return err
	}
	return c.seekEnd("seek", cylinder)
}

func (c *Client) seekEnd(name string, cylinder byte) error {
	st0, pcn, err := c.SenseInterrupt()
	if err != nil {
		return err
	}
	if st0&fdc.ST0SeekEnd == 0 {
		return errors.Errorf("fdc: %s did not end, ST0=%02X", name, st0)
	}
	if pcn != cylinder {
		return errors.Errorf("fdc: %s ended on cylinder %d, expected %d", name, pcn, cylinder)
	}
	log.Debugf("host: %s to cylinder %d", name, pcn)
	return nil
}

// SenseDrive returns ST3.
func (c *Client) SenseDrive(drive int, head byte) (byte, error) {
	if err := c.send(fdc.CmdSenseDriveStatus, unit(drive, head)); err != nil {
		return 0, err
	}
	res, err := c.result()
	if err != nil {
		return 0, err
	}
	if len(res) != 1 {
		return 0, errors.Errorf("fdc: sense drive status returned %d bytes", len(res))
	}
	return res[0], nil
}

// ReadID returns the ID of the next sector to pass under the head.
func (c *Client) ReadID(drive int, head byte) (fdc.SectorID, error) {
	if err := c.send(fdc.CmdReadID|c.density(), unit(drive, head)); err != nil {
		return fdc.SectorID{}, err
	}
	res, err := c.result()
	if err != nil {
		return fdc.SectorID{}, err
	}
	if err := checkResult("read id", res); err != nil {
		return fdc.SectorID{}, err
	}
	if len(res) != 7 {
		return fdc.SectorID{}, errors.Errorf("fdc: read id returned %d bytes", len(res))
	}
	return fdc.SectorID{C: res[3], H: res[4], R: res[5], N: res[6]}, nil
}

// ReadSectors reads sectors first to last of the cylinder the head is on. Data transferred before an error is returned with it.
func (c *Client) ReadSectors(drive int, cylinder, head, first, last, n byte) ([]byte, error) {
	err := c.send(fdc.CmdReadData|c.density(), unit(drive, head), cylinder, head, first, n, last, readWriteGap, 0xff)
	if err != nil {
		return nil, err
	}

	data := c.execution()

	res, err := c.result()
	if err != nil {
		return data, err
	}
	if err := checkResult("read data", res); err != nil {
		return data, err
	}

	log.Debugf("host: read C%d H%d R%02X-%02X, %d bytes", cylinder, head, first, last, len(data))
	return data, nil
}
