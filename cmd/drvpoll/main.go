// Command drvpoll drives a DRV8305 from a host machine through a serial
// SPI bridge and logs the decoded status registers.
//
// The bridge is a microcontroller forwarding single-letter commands to the
// chip over its SPI and GPIO pins:
//
//	'x' hi lo  perform one 16-bit SPI exchange, answer with 2 bytes MSB first
//	'e' / 'd'  drive EN_GATE high / low
//	'w' / 's'  drive WAKE high / low
//	'f'        answer with 1 byte: 1 if nFAULT is asserted, else 0
package main

import (
	"encoding/binary"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/soypat/drv8305"
	"github.com/soypat/drv8305/regs"
	"github.com/tarm/serial"
)

func main() {
	port := flag.String("port", "/dev/ttyACM0", "Serial port of the SPI bridge.")
	baud := flag.Int("baud", 115200, "Serial baud rate.")
	tick := flag.Duration("tick", time.Millisecond, "Driver timer tick period.")
	gain := flag.Uint("gain", 10, "Shunt amplifier gain for all channels (10, 20, 40 or 80 V/V).")
	verbose := flag.Bool("v", false, "Log every SPI transaction.")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug - 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sp, err := serial.OpenPort(&serial.Config{
		Name:        *port,
		Baud:        *baud,
		ReadTimeout: time.Second,
	})
	if err != nil {
		logger.Error("open port", slog.String("err", err.Error()))
		os.Exit(1)
	}
	br := &bridge{port: sp, logger: logger}

	cfg := regs.DefaultConfiguration()
	csGain, ok := gainFromFlag(*gain)
	if !ok {
		logger.Error("invalid gain", slog.Uint64("gain", uint64(*gain)))
		os.Exit(1)
	}
	cfg.ShuntAmplifier.GainCh1 = csGain
	cfg.ShuntAmplifier.GainCh2 = csGain
	cfg.ShuntAmplifier.GainCh3 = csGain

	d := drv8305.New(br)
	err = d.Init(drv8305.Config{
		Logger:        logger,
		Configuration: &cfg,
		StatusCallbacks: drv8305.StatusCallbacks{
			Warning: func(d *drv8305.Device, data uint16) {
				logger.Info("warning", slog.String("flags", regs.Warning(data).String()))
			},
			OVVDS: func(d *drv8305.Device, data uint16) {
				logger.Info("ov/vds", slog.String("flags", regs.OVVDSFault(data).String()))
			},
			ICFaults: func(d *drv8305.Device, data uint16) {
				logger.Info("ic-faults", slog.String("flags", regs.ICFault(data).String()))
			},
			VGSFaults: func(d *drv8305.Device, data uint16) {
				logger.Info("vgs-faults", slog.String("flags", regs.VGSFault(data).String()),
					slog.Bool("nfault", d.FaultPinActive()))
			},
		},
	})
	if err != nil {
		logger.Error("init", slog.String("err", err.Error()))
		os.Exit(1)
	}

	go func() {
		for range time.Tick(*tick) {
			d.Tick()
		}
	}()
	confirmed := false
	for {
		d.Poll()
		if !confirmed && d.ConfigurationConfirmed() {
			confirmed = true
			logger.Info("configuration confirmed")
		}
		time.Sleep(*tick / 4)
	}
}

func gainFromFlag(g uint) (regs.Gain, bool) {
	switch g {
	case 10:
		return regs.Gain10, true
	case 20:
		return regs.Gain20, true
	case 40:
		return regs.Gain40, true
	case 80:
		return regs.Gain80, true
	}
	return 0, false
}

// bridge implements drv8305.Hardware over the serial framing described in
// the command documentation.
type bridge struct {
	port   *serial.Port
	logger *slog.Logger
	buf    [3]byte
}

func (b *bridge) EnableGate()  { b.command('e') }
func (b *bridge) DisableGate() { b.command('d') }
func (b *bridge) Wake()        { b.command('w') }
func (b *bridge) Sleep()       { b.command('s') }

func (b *bridge) Transact(w uint16) uint16 {
	b.buf[0] = 'x'
	binary.BigEndian.PutUint16(b.buf[1:], w)
	if _, err := b.port.Write(b.buf[:3]); err != nil {
		b.logger.Error("bridge write", slog.String("err", err.Error()))
		return 0
	}
	if !b.readFull(b.buf[:2]) {
		return 0
	}
	return binary.BigEndian.Uint16(b.buf[:2])
}

func (b *bridge) FaultPin() bool {
	b.buf[0] = 'f'
	if _, err := b.port.Write(b.buf[:1]); err != nil {
		return false
	}
	return b.readFull(b.buf[:1]) && b.buf[0] != 0
}

func (b *bridge) command(c byte) {
	b.buf[0] = c
	if _, err := b.port.Write(b.buf[:1]); err != nil {
		b.logger.Error("bridge write", slog.String("err", err.Error()))
	}
}

// readFull reads exactly len(p) bytes, tolerating the short reads the
// serial read timeout produces.
func (b *bridge) readFull(p []byte) bool {
	for got := 0; got < len(p); {
		n, err := b.port.Read(p[got:])
		if err != nil {
			b.logger.Error("bridge read", slog.String("err", err.Error()))
			return false
		}
		if n == 0 {
			b.logger.Error("bridge read timeout")
			return false
		}
		got += n
	}
	return true
}
