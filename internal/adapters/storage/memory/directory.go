package memory

import (
	"fmt"
	"io"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

// Directory guarda los nombres para mostrar de niños y agentes.
// Implementa historic.Names.
type Directory struct {
	mu       sync.RWMutex
	children map[string]string
	agents   map[string]string
}

func NewDirectory() *Directory {
	return &Directory{
		children: make(map[string]string),
		agents:   make(map[string]string),
	}
}

// directoryFile es el formato de -names:
// {"children": {"c1": "Ana"}, "agents": {"agent-1": "Marta"}}
type directoryFile struct {
	Children map[string]string `json:"children"`
	Agents   map[string]string `json:"agents"`
}

func LoadDirectory(r io.Reader) (*Directory, error) {
	var f directoryFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	d := NewDirectory()
	for id, name := range f.Children {
		d.SetChild(id, name)
	}
	for id, name := range f.Agents {
		d.SetAgent(id, name)
	}
	return d, nil
}

func (d *Directory) SetChild(id, name string) {
	d.set(d.children, id, name)
}

func (d *Directory) SetAgent(id, name string) {
	d.set(d.agents, id, name)
}

func (d *Directory) set(m map[string]string, id, name string) {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	if id == "" || name == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	m[id] = name
}

func (d *Directory) ChildName(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.children[id]
}

func (d *Directory) AgentName(id string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.agents[id]
}
