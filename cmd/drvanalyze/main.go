// Command drvanalyze processes binary Saleae digital capture files of
// DRV8305 SPI traffic and prints the decoded register transactions.
//
// Capture CS, CLK, MOSI and optionally MISO as separate digital channels
// and export them as binary files from the Saleae software.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/soypat/drv8305/regs"
	"github.com/soypat/saleae"
	"github.com/soypat/saleae/analyzers"
	"golang.org/x/exp/constraints"
)

// Optional flags.
var (
	timingsOutput string
)

type BusCtl struct {
	OmitRead     bool
	OmitWrite    bool
	OmitRepeated bool
}

func main() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "drvanalyze - Process binary Saleae digital data files corresponding to DRV8305 transactions.\n\tUsage:\n")
		flag.PrintDefaults()
	}
	mosi := flag.String("f-mosi", "digital_1.bin", "Input filename: SPI MOSI data (host to chip).")
	miso := flag.String("f-miso", "", "Input filename: SPI MISO data (chip to host). Empty to decode command words only.")
	enable := flag.String("f-cs", "digital_0.bin", "Input filename: SPI CS/SS data.")
	clk := flag.String("f-clk", "digital_2.bin", "Input filename: SPI CLK data.")
	output := flag.String("o-cmd", "commands.txt", "Output filename of DRV8305 register transactions.")

	flag.StringVar(&timingsOutput, "o-time", "", "Output timing data to a file corresponding to output command history line-by-line.")
	omitReadAll := flag.Bool("omit-read", false, "Choose to omit read commands in output.")
	omitWriteAll := flag.Bool("omit-write", false, "Choose to omit write commands in output.")
	omitRepeated := flag.Bool("omit-rep", false, "Collapse identical consecutive transactions into one line.")
	flag.Parse()

	BUS := BusCtl{
		OmitRead:     *omitReadAll,
		OmitWrite:    *omitWriteAll,
		OmitRepeated: *omitRepeated,
	}
	if BUS.OmitRead && BUS.OmitWrite {
		log.Fatal("cannot omit both read and write commands")
	}
	start := time.Now()
	if err := BUS.run(*mosi, *miso, *enable, *clk, *output); err != nil {
		log.Fatal(err.Error())
	}
	log.Println("finished in", time.Since(start))
}

func (bus *BusCtl) run(mosi, miso, enable, clk, output string) error {
	txs, err := bus.processSpiFiles(mosi, miso, clk, enable)
	if err != nil {
		return err
	}
	fp, err := os.Create(output)
	if err != nil {
		return err
	}
	defer fp.Close()

	var timings *os.File
	if timingsOutput != "" {
		log.Println("creating timings file", timingsOutput)
		timings, err = os.Create(timingsOutput)
		if err != nil {
			return err
		}
		defer timings.Close()
	}

	for _, action := range txs {
		if (bus.OmitRead && !action.Cmd.Write) || (bus.OmitWrite && action.Cmd.Write) {
			continue
		}
		_, err = fmt.Fprintf(fp, "cmd×%2d %s\n", action.Num, action.Cmd.String())
		if err != nil {
			return err
		}
		if timings != nil {
			fmt.Fprintf(timings, "t=%f\tword=%#04x\n", action.Start, action.Cmd.Raw)
		}
	}
	return nil
}

func (bus *BusCtl) processSpiFiles(fmosi, fmiso, fclk, fenable string) ([]drvtx, error) {
	mosi, err := opendigital(fmosi)
	if err != nil {
		return nil, err
	}
	miso := mosi
	if fmiso != "" {
		miso, err = opendigital(fmiso)
		if err != nil {
			return nil, err
		}
	}
	clk, err := opendigital(fclk)
	if err != nil {
		return nil, err
	}
	enable, err := opendigital(fenable)
	if err != nil {
		return nil, err
	}
	spi := analyzers.SPI{}
	txs, _ := spi.Scan(clk, enable, mosi, miso)
	return bus.process(txs, fmiso != ""), nil
}

func opendigital(filename string) (*saleae.DigitalFile, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	df, err := saleae.ReadDigitalFile(fp)
	if err != nil {
		return nil, err
	}
	return df, nil
}

// DRV8305Cmd is one decoded 16-bit SPI exchange.
type DRV8305Cmd struct {
	Raw      uint16
	Write    bool
	Addr     regs.Addr
	Data     uint16
	HasResp  bool
	Resp     uint16
	RespFlt  bool
	RespAddr regs.Addr
}

func (cmd *DRV8305Cmd) String() string {
	dir := "read "
	if cmd.Write {
		dir = "write"
	}
	s := fmt.Sprintf("%s reg=%-13s data=%#03x", dir, cmd.Addr.String(), cmd.Data)
	if cmd.HasResp {
		s += fmt.Sprintf("  resp=%#03x fault=%5v echo=%s", cmd.Resp, cmd.RespFlt, cmd.RespAddr.String())
	}
	return s
}

func commandFromBytes(sdo, sdi []byte, hasResp bool) (cmd DRV8305Cmd) {
	word := wordFromBytes(sdo)
	cmd.Raw = word
	cmd.Write = word&(1<<15) == 0
	cmd.Addr = regs.Addr(word >> 11 & 0xF)
	cmd.Data = regs.DecodeResponse(word)
	if hasResp {
		resp := wordFromBytes(sdi)
		cmd.HasResp = true
		cmd.Resp = regs.DecodeResponse(resp)
		cmd.RespFlt = regs.ResponseFault(resp)
		cmd.RespAddr = regs.ResponseAddr(resp)
	}
	return cmd
}

// wordFromBytes interprets the first two captured bytes as one MSB-first
// 16-bit word. Short captures decode as zero-padded.
func wordFromBytes(b []byte) uint16 {
	var w uint16
	for i := 0; i < min(2, len(b)); i++ {
		w |= uint16(b[i]) << (8 * (1 - i))
	}
	return w
}

type drvtx struct {
	Num   int
	Cmd   DRV8305Cmd
	Start float64
}

func (bus *BusCtl) process(txs []analyzers.TxSPI, hasResp bool) (dtxs []drvtx) {
	var accumulativeResults int = 1
	for i := 0; i < len(txs); i++ {
		tx := txs[i]
		cmd := commandFromBytes(tx.SDO, tx.SDI, hasResp)
		if bus.OmitRepeated {
			for j := i + 1; j < len(txs); j++ {
				nextcmd := commandFromBytes(txs[j].SDO, txs[j].SDI, hasResp)
				if nextcmd != cmd {
					break
				}
				accumulativeResults++
				i = j
			}
		}
		dtxs = append(dtxs, drvtx{
			Num:   accumulativeResults,
			Cmd:   cmd,
			Start: tx.StartTime(),
		})
		accumulativeResults = 1
	}
	return dtxs
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
