// Package classify holds the task catalog and result types shared by the
// heuristic scorer, the network and the engine.
package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haskel/aguacate/internal/features"
)

var (
	// ErrInvalidInput reports malformed pixel buffers or feature vectors.
	ErrInvalidInput = features.ErrInvalidInput

	// ErrUnknownTask reports a task identifier outside the catalog.
	ErrUnknownTask = errors.New("unknown task")
)

// Task selects a class enumeration and its model.
type Task string

const (
	TaskLeaf  Task = "leaf"
	TaskFruit Task = "fruit"
	TaskPest  Task = "pest"
)

// Class is one category of a task.
type Class struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type taskInfo struct {
	classes []Class
	hidden  int
}

// Class order defines the network output positions and heuristic
// tie-breaking.
var catalog = map[Task]taskInfo{
	TaskLeaf: {
		hidden: 12,
		classes: []Class{
			{ID: "healthy", Label: "Healthy leaf"},
			{ID: "anthracnose", Label: "Anthracnose"},
			{ID: "powdery_mildew", Label: "Powdery mildew"},
			{ID: "leaf_spot", Label: "Leaf spot"},
			{ID: "cercospora", Label: "Cercospora spot"},
			{ID: "sunburn", Label: "Sunburn"},
		},
	},
	TaskFruit: {
		hidden: 10,
		classes: []Class{
			{ID: "unripe", Label: "Unripe"},
			{ID: "almost_ripe", Label: "Almost ripe"},
			{ID: "ripe", Label: "Ripe"},
			{ID: "overripe", Label: "Overripe"},
		},
	},
	TaskPest: {
		hidden: 14,
		classes: []Class{
			{ID: "thrips", Label: "Avocado thrips"},
			{ID: "scale", Label: "Scale insects"},
			{ID: "mites", Label: "Avocado mites"},
			{ID: "worms", Label: "Defoliating worms"},
			{ID: "borer", Label: "Seed borer"},
			{ID: "fruitfly", Label: "Fruit fly"},
			{ID: "rootborer", Label: "Root borer"},
		},
	},
}

// Tasks returns all tasks in a fixed order.
func Tasks() []Task {
	return []Task{TaskLeaf, TaskFruit, TaskPest}
}

// ParseTask parses a task identifier.
func ParseTask(s string) (Task, error) {
	t := Task(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
	}
	return t, nil
}

// IsValid checks if the task is part of the catalog.
func (t Task) IsValid() bool {
	_, ok := catalog[t]
	return ok
}

// String returns string representation.
func (t Task) String() string {
	return string(t)
}

// Classes returns the class enumeration of a task.
func (t Task) Classes() ([]Class, error) {
	info, ok := catalog[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, string(t))
	}
	out := make([]Class, len(info.classes))
	copy(out, info.classes)
	return out, nil
}

// ClassIDs returns the class identifiers of a task in enumeration order.
func (t Task) ClassIDs() ([]string, error) {
	classes, err := t.Classes()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(classes))
	for i, c := range classes {
		ids[i] = c.ID
	}
	return ids, nil
}

// HiddenSize returns the default hidden layer width for the task's network.
func (t Task) HiddenSize() int {
	return catalog[t].hidden
}

// Label looks up the display label of a class. Unknown classes return the
// identifier unchanged.
func (t Task) Label(classID string) string {
	for _, c := range catalog[t].classes {
		if c.ID == classID {
			return c.Label
		}
	}
	return classID
}

// HasClass reports whether classID belongs to the task.
func (t Task) HasClass(classID string) bool {
	for _, c := range catalog[t].classes {
		if c.ID == classID {
			return true
		}
	}
	return false
}
