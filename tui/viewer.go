package tui

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/jrwynneiii/iqtools/config"
	"github.com/jrwynneiii/iqtools/iq"
	"github.com/jrwynneiii/iqtools/stats"
	"github.com/rivo/tview"
)

type CaptureFilesData struct {
	tview.TableContentReadOnly
	Files []string
}

func (c *CaptureFilesData) GetRowCount() int {
	return len(c.Files)
}

func (c *CaptureFilesData) GetColumnCount() int {
	return 1
}

func (c *CaptureFilesData) GetCell(row, column int) *tview.TableCell {
	color := "[lightskyblue]"
	return tview.NewTableCell(fmt.Sprintf("%s%s", color, c.Files[row]))
}

// DescribeCapture reads the whole capture at path and renders a text report
// with its summary statistics and the spectrum peak of its first chunk.
func DescribeCapture(path string, input config.InputConf, fftSize int) (string, error) {
	compression := input.Compression
	if compression == iq.CompressionNone {
		compression = iq.CompressionFromPath(path)
	}

	r, err := iq.New(path, input.ChunkSize, input.Encoding, iq.WithCompression(compression))
	if err != nil {
		return "", err
	}
	defer r.Close()

	var summary stats.Summary
	var spectrum []float64
	for i := 0; ; i++ {
		chunk, err := r.ReadChunk128()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if input.Normalize {
			iq.NormalizeComplex128(chunk, input.Encoding)
		}
		summary.Add(stats.Compute(i, chunk))
		if spectrum == nil {
			if spectrum, err = stats.Spectrum(chunk, fftSize); err != nil {
				return "", err
			}
		}
	}

	msg := `File: %s
Encoding: %s (%d bytes per sample)
Compression: %s
Chunk size: %d samples
Chunks: %d
Samples: %d
Trailing bytes dropped: %d
DC offset: %.6f
Mean power: %.2f dB
Peak magnitude: %.6f`
	output := fmt.Sprintf(msg, path, input.Encoding, input.Encoding.SampleWidth(), compression, input.ChunkSize,
		summary.Chunks, summary.Samples, r.DroppedBytes(), summary.DCOffset(), summary.MeanPowerDB(), summary.Peak)

	if len(spectrum) > 0 {
		peakBin, peakDB := 0, spectrum[0]
		for i, v := range spectrum {
			if v > peakDB {
				peakBin, peakDB = i, v
			}
		}
		output = strings.Join([]string{output,
			fmt.Sprintf("First chunk spectrum peak: bin %d of %d (offset %+d), %.2f dB", peakBin, fftSize, peakBin-fftSize/2, peakDB),
		}, "\n")
	}
	return output, nil
}

// newReportView builds the summary pane. It has no changed func: every write
// to it happens on the event goroutine, which redraws on its own.
func newReportView(title string) *tview.TextView {
	view := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true).
		SetScrollable(true)
	view.SetBorder(true)
	view.SetTitle(title)
	return view
}

func StartCaptureViewerUI(files []string, dir string, input config.InputConf, tuiConf config.TuiConf) {
	app := tview.NewApplication()

	captureData := &CaptureFilesData{Files: files}
	captureTable := tview.NewTable().SetContent(captureData)
	captureTable.SetSelectable(true, true).SetBorder(false)

	captureBox := tview.NewFlex()
	captureBox.SetDirection(tview.FlexRow)
	captureBox.AddItem(captureTable, 0, 1, false)
	captureBox.SetTitle("Captures")
	captureBox.SetBorder(true)

	// Init our page and columns
	page := tview.NewFlex().SetDirection(tview.FlexColumn)

	leftCol := tview.NewFlex().SetDirection(tview.FlexRow)
	leftCol.AddItem(captureBox, 0, 6, false)

	captureDescBox := newReportView("Capture Summary")

	rightCol := tview.NewFlex().SetDirection(tview.FlexRow)
	rightCol.AddItem(captureDescBox, 0, 4, true)

	page.AddItem(leftCol, 0, 2, false)
	page.AddItem(rightCol, 0, 5, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			if captureTable.HasFocus() {
				app.SetFocus(captureDescBox)
			} else {
				app.SetFocus(captureTable)
			}
		case tcell.KeyEnter:
			if len(files) == 0 {
				break
			}
			selectedRow, _ := captureTable.GetSelection()
			name := files[selectedRow]
			captureDescBox.Clear()
			fmt.Fprintf(captureDescBox, "Reading %s...", name)

			go func() {
				output, err := DescribeCapture(filepath.Join(dir, name), input, tuiConf.FFTSize)
				if err != nil {
					log.Errorf("Could not read %s: %v", name, err)
					output = fmt.Sprintf("[red]%s", err.Error())
				}
				app.QueueUpdateDraw(func() {
					captureDescBox.Clear()
					fmt.Fprint(captureDescBox, output)
				})
			}()
		}
		switch event.Rune() {
		case 'q':
			app.Stop()
		}
		return event
	})

	// Start the TUI
	if err := app.SetRoot(page, true).EnableMouse(false).SetFocus(captureTable).Run(); err != nil {
		log.Fatalf("Could not start UI: %v", err)
	}
}
