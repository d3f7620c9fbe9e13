// fits_inspect dumps the header and geometry of a FITS map file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sambenfield/galmap/pkg/fits"
)

func main() {
	var (
		showCards = flag.Bool("cards", false, "print every header card verbatim")
		showStats = flag.Bool("stats", false, "read the data region and print min/max/mean")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: fits_inspect [--cards] [--stats] <path.fits>")
		os.Exit(2)
	}

	path := flag.Arg(0)
	fio := fits.NewIO(nil)
	h, err := fio.ReadHeader(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Printf("File: %s\n", path)
	bp, err := h.Bitpix()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	bscale, bzero := h.Scaling()
	fmt.Printf("BITPIX=%d | axes=%v | elements=%d | bscale=%g bzero=%g\n",
		bp, h.Axes(), h.NData(), bscale, bzero)
	if len(h.Synthesized) > 0 {
		fmt.Printf("synthesized cards: %v\n", h.Synthesized)
	}

	printKey(h, fits.LabelCtype1)
	printKey(h, fits.LabelCtype2)
	printKey(h, fits.LabelCrval1)
	printKey(h, fits.LabelCrval2)
	printKey(h, fits.LabelCrpix1)
	printKey(h, fits.LabelCrpix2)
	printKey(h, fits.LabelLamNSGP)
	printKey(h, fits.LabelLamScal)
	printKey(h, fits.LabelLonpole)

	if *showCards {
		fmt.Println()
		for i := 0; i < h.Len(); i++ {
			fmt.Println(h.Card(i).String())
		}
	}

	if *showStats {
		img, err := fio.ReadImage(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		if len(img.Data) == 0 {
			fmt.Println("no data")
			return
		}
		lo, hi := img.Data[0], img.Data[0]
		sum := 0.0
		for _, v := range img.Data {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			sum += float64(v)
		}
		fmt.Printf("min=%g max=%g mean=%g\n", lo, hi, sum/float64(len(img.Data)))
	}
}

func printKey(h *fits.Header, label string) {
	i, ok := h.Find(label)
	if !ok {
		return
	}
	c := h.Card(i)
	if v, err := c.RealValue(); err == nil {
		fmt.Printf("  %-8s = %g\n", label, v)
		return
	}
	if s := c.StringValue(); s != "" {
		fmt.Printf("  %-8s = %s\n", label, s)
	}
}
