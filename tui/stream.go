package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/jrwynneiii/iqtools/config"
	"github.com/jrwynneiii/iqtools/iq"
	"github.com/jrwynneiii/iqtools/stats"
	"github.com/navidys/tvxwidgets"
	"github.com/rivo/tview"
)

var LogOut *tview.TextView

// Frame is one decoded chunk as handed to the viewer.
type Frame struct {
	Chunk     stats.Chunk
	Spectrum  []float64
	Magnitude []float64
}

// CaptureInfo describes the capture being streamed.
type CaptureInfo struct {
	Path      string
	Encoding  iq.Encoding
	ChunkSize int
}

type CaptureStatus struct {
	Summary      stats.Summary
	Done         bool
	DroppedBytes int
	Err          error
}

var overallCaptureStatus CaptureStatus
var CaptureStatusMutex sync.RWMutex

func ReadCaptureStatus() CaptureStatus {
	CaptureStatusMutex.RLock()
	defer CaptureStatusMutex.RUnlock()
	return overallCaptureStatus
}

func WriteCaptureStatus(s CaptureStatus) {
	CaptureStatusMutex.Lock()
	defer CaptureStatusMutex.Unlock()

	overallCaptureStatus = s
}

// ChunkHistory keeps the most recent chunks, newest last.
type ChunkHistory struct {
	mu     sync.RWMutex
	max    int
	chunks []stats.Chunk
	last   Frame
}

func NewChunkHistory(max int) *ChunkHistory {
	return &ChunkHistory{max: max}
}

func (h *ChunkHistory) Push(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.chunks = append(h.chunks, f.Chunk)
	if over := len(h.chunks) - h.max; over > 0 {
		h.chunks = h.chunks[over:]
	}
	h.last = f
}

func (h *ChunkHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chunks)
}

// At returns the row'th chunk counting back from the newest.
func (h *ChunkHistory) At(row int) (stats.Chunk, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if row < 0 || row >= len(h.chunks) {
		return stats.Chunk{}, false
	}
	return h.chunks[len(h.chunks)-1-row], true
}

func (h *ChunkHistory) Last() Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// PowerTrace returns the power of every retained chunk in dB, oldest first.
func (h *ChunkHistory) PowerTrace() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]float64, len(h.chunks))
	for i, c := range h.chunks {
		out[i] = c.PowerDB
	}
	return out
}

var chunkColumns = []string{"Chunk", "Samples", "DC I", "DC Q", "RMS", "Power dB", "Peak"}

type ChunkTableData struct {
	tview.TableContentReadOnly
	History *ChunkHistory
}

func (c *ChunkTableData) GetRowCount() int {
	return c.History.Len() + 1
}

func (c *ChunkTableData) GetColumnCount() int {
	return len(chunkColumns)
}

func (c *ChunkTableData) GetCell(row, column int) *tview.TableCell {
	if row == 0 {
		return tview.NewTableCell(chunkColumns[column]).SetTextColor(tcell.ColorYellow).SetSelectable(false)
	}

	chunk, ok := c.History.At(row - 1)
	if !ok {
		return tview.NewTableCell("")
	}

	switch column {
	case 0:
		return tview.NewTableCell(fmt.Sprintf("%d", chunk.Index))
	case 1:
		return tview.NewTableCell(fmt.Sprintf("%d", chunk.Samples))
	case 2:
		return tview.NewTableCell(fmt.Sprintf("%.4f", chunk.MeanI))
	case 3:
		return tview.NewTableCell(fmt.Sprintf("%.4f", chunk.MeanQ))
	case 4:
		return tview.NewTableCell(fmt.Sprintf("%.4f", chunk.RMS))
	case 5:
		color := "[green]"
		if chunk.PowerDB <= stats.FloorDB {
			color = "[red]"
		}
		return tview.NewTableCell(fmt.Sprintf("%s%.2f", color, chunk.PowerDB))
	case 6:
		return tview.NewTableCell(fmt.Sprintf("%.4f", chunk.Peak))
	default:
		return tview.NewTableCell("ERROR")
	}
}

type StatusTableData struct {
	tview.TableContentReadOnly
	Info CaptureInfo
}

func (s *StatusTableData) GetRowCount() int {
	return 8
}

func (s *StatusTableData) GetColumnCount() int {
	return 2
}

func (s *StatusTableData) GetCell(row, column int) *tview.TableCell {
	status := ReadCaptureStatus()
	labels := []string{"File:", "Encoding:", "Chunk size:", "Chunks read:", "Samples read:", "DC offset:", "Mean power:", "State:"}
	if row < 0 || row >= len(labels) {
		return tview.NewTableCell("ERROR")
	}
	if column == 0 {
		return tview.NewTableCell(labels[row])
	}

	switch row {
	case 0:
		return tview.NewTableCell(s.Info.Path)
	case 1:
		return tview.NewTableCell(s.Info.Encoding.String())
	case 2:
		return tview.NewTableCell(fmt.Sprintf("%d samples", s.Info.ChunkSize))
	case 3:
		return tview.NewTableCell(fmt.Sprintf("%d", status.Summary.Chunks))
	case 4:
		return tview.NewTableCell(fmt.Sprintf("%d", status.Summary.Samples))
	case 5:
		return tview.NewTableCell(fmt.Sprintf("%.4f", status.Summary.DCOffset()))
	case 6:
		return tview.NewTableCell(fmt.Sprintf("%.2f dB", status.Summary.MeanPowerDB()))
	default:
		switch {
		case status.Err != nil:
			return tview.NewTableCell(fmt.Sprintf("[red]error: %v", status.Err))
		case status.Done && status.DroppedBytes > 0:
			return tview.NewTableCell(fmt.Sprintf("[yellow]done, %d trailing bytes dropped", status.DroppedBytes))
		case status.Done:
			return tview.NewTableCell("[green]done")
		default:
			return tview.NewTableCell("[lightskyblue]streaming")
		}
	}
}

func StartIQViewUI(frames <-chan Frame, info CaptureInfo, tuiConf config.TuiConf) {
	app := tview.NewApplication()
	history := NewChunkHistory(tuiConf.HistoryLen)

	LogOut = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	var logMutex sync.Mutex
	LogOut.SetChangedFunc(func() {
		logMutex.Lock()
		LogOut.ScrollToEnd()
		app.Draw()
		logMutex.Unlock()
	})

	LogOut.SetBorder(true).SetTitle("Log Output")
	log.SetOutput(LogOut)

	// Init our tables
	statusTable := tview.NewTable().SetContent(&StatusTableData{Info: info})
	statusTable.SetSelectable(false, false).SetBorder(false)

	statusBox := tview.NewFlex().SetDirection(tview.FlexRow)
	statusBox.AddItem(statusTable, 0, 1, false)
	statusBox.SetBorder(true)
	statusBox.SetTitle("Capture Status")

	chunkTable := tview.NewTable().SetContent(&ChunkTableData{History: history})
	chunkTable.SetSelectable(true, false).SetFixed(1, 0).SetBorder(false)

	chunkBox := tview.NewFlex().SetDirection(tview.FlexRow)
	chunkBox.AddItem(chunkTable, 0, 1, false)
	chunkBox.SetTitle("Chunks")
	chunkBox.SetBorder(true)

	spectrumPlot := tvxwidgets.NewPlot()
	spectrumPlot.SetBorder(true)
	spectrumPlot.SetTitle(fmt.Sprintf("Spectrum (%d bins, dB)", tuiConf.FFTSize))
	spectrumPlot.SetLineColor([]tcell.Color{tcell.ColorSteelBlue})
	spectrumPlot.SetMarker(tvxwidgets.PlotMarkerBraille)

	magnitudePlot := tvxwidgets.NewPlot()
	magnitudePlot.SetBorder(true)
	magnitudePlot.SetTitle("Magnitude")
	magnitudePlot.SetLineColor([]tcell.Color{tcell.ColorGreen})
	magnitudePlot.SetMarker(tvxwidgets.PlotMarkerBraille)

	powerPlot := tvxwidgets.NewPlot()
	powerPlot.SetBorder(true)
	powerPlot.SetTitle("Chunk Power (dB)")
	powerPlot.SetLineColor([]tcell.Color{tcell.ColorOrange})
	powerPlot.SetMarker(tvxwidgets.PlotMarkerBraille)

	// Init our page and columns
	page := tview.NewFlex().SetDirection(tview.FlexColumn)

	leftCol := tview.NewFlex().SetDirection(tview.FlexRow)
	leftCol.AddItem(statusBox, 10, 0, false)
	leftCol.AddItem(chunkBox, 0, 6, true)

	plotRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	plotRow.AddItem(magnitudePlot, 0, 1, false)
	plotRow.AddItem(powerPlot, 0, 1, false)

	rightCol := tview.NewFlex().SetDirection(tview.FlexRow)
	rightCol.AddItem(spectrumPlot, 0, 4, false)
	rightCol.AddItem(plotRow, 0, 3, false)
	if tuiConf.EnableLogOutput {
		rightCol.AddItem(LogOut, 0, 2, false)
	}
	page.AddItem(leftCol, 0, 2, true)
	page.AddItem(rightCol, 0, 5, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			if chunkTable.HasFocus() && tuiConf.EnableLogOutput {
				app.SetFocus(LogOut)
			} else {
				app.SetFocus(chunkTable)
			}
		}
		switch event.Rune() {
		case 'q':
			app.Stop()
		}
		return event
	})

	//Update plots in our UI.
	go func() {
		for {
			last := history.Last()
			if len(last.Spectrum) > 0 {
				spectrumPlot.SetData([][]float64{last.Spectrum})
			}
			if len(last.Magnitude) > 0 {
				magnitudePlot.SetData([][]float64{last.Magnitude})
			}
			if trace := history.PowerTrace(); len(trace) > 1 {
				powerPlot.SetData([][]float64{trace})
			}

			app.Draw()
			time.Sleep(time.Duration(tuiConf.RefreshMs) * time.Millisecond)
		}
	}()

	go func() {
		for f := range frames {
			history.Push(f)
		}
		log.Infof("Finished streaming %s", info.Path)
	}()

	// Start the TUI
	if err := app.SetRoot(page, true).EnableMouse(false).SetFocus(chunkTable).Run(); err != nil {
		log.Fatalf("Could not start UI: %v", err)
	}
}
