package calendar

import (
	_ "embed"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed bs_months.yaml
var bsMonthsYAML []byte

// bsTable is loaded once; the data is compiled in and verified by tests, so a
// decode failure is a build defect and panics.
var bsTable = mustLoadTable(bsMonthsYAML)

type tableFile struct {
	Version string `yaml:"version"`
	Epoch   struct {
		BS string `yaml:"bs"`
		AD string `yaml:"ad"`
	} `yaml:"epoch"`
	Years map[int][]int `yaml:"years"`
}

type table struct {
	version   string
	firstYear int
	months    [][12]int
	// yearStart[i] is the day offset from the epoch of 1 Baisakh of firstYear+i.
	yearStart []int
	totalDays int
	epoch     time.Time
	end       time.Time // exclusive
}

func mustLoadTable(data []byte) *table {
	t, err := loadTable(data)
	if err != nil {
		panic(fmt.Sprintf("calendar: load BS table: %v", err))
	}
	return t
}

func loadTable(data []byte) (*table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("missing version")
	}
	if len(f.Years) == 0 {
		return nil, fmt.Errorf("no years")
	}

	years := make([]int, 0, len(f.Years))
	for y := range f.Years {
		years = append(years, y)
	}
	sort.Ints(years)

	epoch, err := time.Parse(time.DateOnly, f.Epoch.AD)
	if err != nil {
		return nil, fmt.Errorf("epoch.ad: %w", err)
	}
	if want := fmt.Sprintf("%04d-01-01", years[0]); f.Epoch.BS != want {
		return nil, fmt.Errorf("epoch.bs %q must be the first day of the first year (%s)", f.Epoch.BS, want)
	}

	t := &table{
		version:   f.Version,
		firstYear: years[0],
		months:    make([][12]int, 0, len(years)),
		yearStart: make([]int, 0, len(years)),
		epoch:     epoch,
	}
	offset := 0
	for i, y := range years {
		if y != years[0]+i {
			return nil, fmt.Errorf("years must be contiguous: %d follows %d", y, years[i-1])
		}
		row := f.Years[y]
		if len(row) != 12 {
			return nil, fmt.Errorf("year %d: want 12 months, got %d", y, len(row))
		}
		var m [12]int
		for j, n := range row {
			if n < 29 || n > 32 {
				return nil, fmt.Errorf("year %d month %d: implausible length %d", y, j+1, n)
			}
			m[j] = n
		}
		t.months = append(t.months, m)
		t.yearStart = append(t.yearStart, offset)
		for _, n := range m {
			offset += n
		}
	}
	t.totalDays = offset
	t.end = epoch.AddDate(0, 0, offset)
	return t, nil
}

func (t *table) lastYear() int {
	return t.firstYear + len(t.months) - 1
}

func (t *table) row(year int) ([12]int, error) {
	if year < t.firstYear || year > t.lastYear() {
		return [12]int{}, fmt.Errorf("%w: BS year %d not in %d-%d", ErrOutOfRange, year, t.firstYear, t.lastYear())
	}
	return t.months[year-t.firstYear], nil
}

func (t *table) daysInMonth(year, month int) (int, error) {
	r, err := t.row(year)
	if err != nil {
		return 0, err
	}
	return r[month-1], nil
}

// Range describes the span covered by the reference table.
type Range struct {
	Version string `json:"version"`
	FirstBS Date   `json:"first_bs"`
	LastBS  Date   `json:"last_bs"`
	FirstAD Date   `json:"first_ad"`
	LastAD  Date   `json:"last_ad"`
}

// SupportedRange reports the first and last dates the converter accepts, in
// both calendars, along with the table version.
func SupportedRange() Range {
	last := bsTable.lastYear()
	lastRow := bsTable.months[len(bsTable.months)-1]
	return Range{
		Version: bsTable.version,
		FirstBS: Date{cal: BS, year: bsTable.firstYear, month: 1, day: 1},
		LastBS:  Date{cal: BS, year: last, month: 12, day: lastRow[11]},
		FirstAD: FromTime(bsTable.epoch),
		LastAD:  FromTime(bsTable.end.AddDate(0, 0, -1)),
	}
}

// TableVersion returns the version tag of the embedded table.
func TableVersion() string {
	return bsTable.version
}

// MonthLengths returns the twelve month lengths of a BS year.
func MonthLengths(year int) ([12]int, error) {
	return bsTable.row(year)
}
