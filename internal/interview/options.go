package interview

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Menu is a reply keyboard: rows of button labels.
type Menu [][]string

// Options holds the fixed answer sets offered by menus. The defaults match
// the student-day study; a questionnaire file can replace them.
type Options struct {
	PainPoints Menu `yaml:"pain_points"`
	Emotions   Menu `yaml:"emotions"`
}

func DefaultOptions() Options {
	return Options{
		PainPoints: Menu{
			{"Спешка между парами", "Длинные очереди"},
			{"Нехватка времени на обед", "Проблемы с расписанием"},
		},
		Emotions: Menu{
			{"Раздражение", "Злость", "Бессилие"},
			{"Усталость", "Тревога"},
		},
	}
}

// LoadOptions reads a YAML questionnaire. An empty path yields the defaults;
// sections missing from the file keep their default values.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read questionnaire: %w", err)
	}
	var fromFile Options
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return opts, fmt.Errorf("parse questionnaire: %w", err)
	}
	if len(fromFile.PainPoints) > 0 {
		opts.PainPoints = fromFile.PainPoints
	}
	if len(fromFile.Emotions) > 0 {
		opts.Emotions = fromFile.Emotions
	}
	return opts, opts.validate()
}

func (o Options) validate() error {
	for _, m := range []Menu{o.PainPoints, o.Emotions} {
		for _, row := range m {
			for _, label := range row {
				if canonical(label) == "" {
					return errors.New("questionnaire contains an empty option")
				}
				if ParsePainPointControl(label) != ControlNone {
					return fmt.Errorf("option %q collides with a menu command", label)
				}
			}
		}
	}
	return nil
}

// painPointMenu is the option set plus "other" and "skip" rows.
func (o Options) painPointMenu() Menu {
	m := copyMenu(o.PainPoints)
	return append(m, []string{LabelOther}, []string{LabelSkip})
}

// emotionMenu appends "other" to the last row.
func (o Options) emotionMenu() Menu {
	m := copyMenu(o.Emotions)
	if len(m) == 0 {
		return Menu{{LabelOther}}
	}
	last := len(m) - 1
	m[last] = append(m[last], LabelOther)
	return m
}

func copyMenu(m Menu) Menu {
	out := make(Menu, len(m))
	for i, row := range m {
		out[i] = append([]string(nil), row...)
	}
	return out
}

var (
	followUpLayout = Menu{{LabelSelectMore, LabelContinue}}
	scoreLayout    = Menu{
		{"1", "2", "3", "4", "5"},
		{"6", "7", "8", "9", "10"},
	}
)

func followUpMenu() Menu { return copyMenu(followUpLayout) }

func scoreMenu() Menu { return copyMenu(scoreLayout) }
