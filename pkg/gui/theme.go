package gui

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Terminal safe color palette is available here
// Themes should be limited to the colors defined in this reference
// https://upload.wikimedia.org/wikipedia/commons/1/15/Xterm_256color_chart.svg

// Theme is used for coloring the board and the panels around it
type Theme struct {
	Name     string
	Hidden   tcell.Color
	Revealed tcell.Color
	Flag     tcell.Color
	Mine     tcell.Color
	Text     tcell.Color
	Title    tcell.Color
	Status   tcell.Color
	Won      tcell.Color
	Lost     tcell.Color
	Numbers  [8]tcell.Color
}

// ThemeHex is the form a Theme takes in the config file
type ThemeHex struct {
	Name     string    `json:"name"`
	Hidden   string    `json:"hidden"`
	Revealed string    `json:"revealed"`
	Flag     string    `json:"flag"`
	Mine     string    `json:"mine"`
	Text     string    `json:"text"`
	Title    string    `json:"title"`
	Status   string    `json:"status"`
	Won      string    `json:"won"`
	Lost     string    `json:"lost"`
	Numbers  [8]string `json:"numbers"`
}

// fmtHex returns a one character hex for the ColorDefault
// and otherwise it returns a standard hex. This is useful
// because it allows ColorDefault to be imported from the config
// and parsed properly rather than being interpreted as black
func fmtHex(c tcell.Color) string {
	v := c.Hex()
	if v == -1 {
		return "#0"
	}
	return fmt.Sprintf("#%06x", v)
}

// Hex converts a Theme to a ThemeHex
func (t Theme) Hex() ThemeHex {
	h := ThemeHex{
		Name:     t.Name,
		Hidden:   fmtHex(t.Hidden),
		Revealed: fmtHex(t.Revealed),
		Flag:     fmtHex(t.Flag),
		Mine:     fmtHex(t.Mine),
		Text:     fmtHex(t.Text),
		Title:    fmtHex(t.Title),
		Status:   fmtHex(t.Status),
		Won:      fmtHex(t.Won),
		Lost:     fmtHex(t.Lost),
	}
	for i, c := range t.Numbers {
		h.Numbers[i] = fmtHex(c)
	}
	return h
}

// Theme converts a ThemeHex to a Theme. Missing entries are taken from
// ThemeBasic.
func (t ThemeHex) Theme() Theme {
	th := Theme{
		Name:     t.Name,
		Hidden:   color(t.Hidden, ThemeBasic.Hidden),
		Revealed: color(t.Revealed, ThemeBasic.Revealed),
		Flag:     color(t.Flag, ThemeBasic.Flag),
		Mine:     color(t.Mine, ThemeBasic.Mine),
		Text:     color(t.Text, ThemeBasic.Text),
		Title:    color(t.Title, ThemeBasic.Title),
		Status:   color(t.Status, ThemeBasic.Status),
		Won:      color(t.Won, ThemeBasic.Won),
		Lost:     color(t.Lost, ThemeBasic.Lost),
	}
	for i, s := range t.Numbers {
		th.Numbers[i] = color(s, ThemeBasic.Numbers[i])
	}
	return th
}

func color(hex string, fallback tcell.Color) tcell.Color {
	if hex == "" {
		return fallback
	}
	return tcell.GetColor(hex)
}

// Number returns the color of a revealed cell with n adjacent mines
func (t Theme) Number(n int) tcell.Color {
	if n < 1 || n > len(t.Numbers) {
		return t.Text
	}
	return t.Numbers[n-1]
}

// ImportThemes returns a converted Theme from a slice of ThemeHex
// entities if its name matches the want argument
func ImportThemes(want string, themes []ThemeHex) (Theme, error) {
	// First check if want is in the provided config (override)
	for _, t := range themes {
		if t.Name == want {
			return t.Theme(), nil
		}
	}

	for _, t := range Themes {
		if t.Name == want {
			return t, nil
		}
	}

	return Theme{}, errors.New("theme: no theme found")
}

// ThemeBasic is the default theme
var ThemeBasic = Theme{
	Name:     "basic",
	Hidden:   tcell.Color250,
	Revealed: tcell.Color255,
	Flag:     tcell.Color226,
	Mine:     tcell.Color160,
	Text:     tcell.Color232,
	Title:    tcell.Color45,
	Status:   tcell.Color247,
	Won:      tcell.Color34,
	Lost:     tcell.Color160,
	Numbers: [8]tcell.Color{
		tcell.Color21,  // 1
		tcell.Color28,  // 2
		tcell.Color160, // 3
		tcell.Color18,  // 4
		tcell.Color88,  // 5
		tcell.Color30,  // 6
		tcell.Color232, // 7
		tcell.Color244, // 8
	},
}

var ThemeDark = Theme{
	Name:     "dark",
	Hidden:   tcell.Color238,
	Revealed: tcell.Color234,
	Flag:     tcell.Color214,
	Mine:     tcell.Color196,
	Text:     tcell.Color252,
	Title:    tcell.Color81,
	Status:   tcell.Color244,
	Won:      tcell.Color120,
	Lost:     tcell.Color203,
	Numbers: [8]tcell.Color{
		tcell.Color75,
		tcell.Color114,
		tcell.Color210,
		tcell.Color141,
		tcell.Color173,
		tcell.Color80,
		tcell.Color252,
		tcell.Color246,
	},
}

// Themes lists the built in themes
var Themes = []Theme{ThemeBasic, ThemeDark}
