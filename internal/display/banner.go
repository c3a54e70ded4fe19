// Package display renders the startup banner and human-readable sizes.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/backmassage/fontsort/internal/term"
)

const banner = `  __             _                  _
 / _| ___  _ __ | |_ ___  ___  _ __| |_
| |_ / _ \| '_ \| __/ __|/ _ \| '__| __|
|  _| (_) | | | | |_\__ \ (_) | |  | |_
|_|  \___/|_| |_|\__|___/\___/|_|   \__|
`

// PrintBanner prints the ASCII art banner, colored when colors are enabled.
func PrintBanner() {
	writeBanner(os.Stdout)
}

func writeBanner(w io.Writer) {
	fmt.Fprint(w, term.Paint(term.Banner, banner))
}
