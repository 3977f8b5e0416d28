// Package params parses the sectioned key=value parameter block embedded
// in an AthenaK snapshot between the ASCII preamble and the first
// meshblock record.
//
// The block mirrors the input file the simulation ran with:
//
//	# comment lines are ignored
//	<mesh>
//	nghost = 2        # trailing comments are stripped
//	nx1    = 64
//	<meshblock>
//	nx1    = 16
package params

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Params holds the parsed parameter block, organized by section.
type Params struct {
	sections map[string]map[string]string
}

// Parse parses the raw parameter block text.
// Keys encountered before any section header are an error.
func Parse(data []byte) (*Params, error) {
	p := &Params{sections: make(map[string]map[string]string)}

	var current map[string]string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "<") {
			name := strings.TrimSuffix(strings.TrimPrefix(trimmed, "<"), ">")
			if name == "" {
				return nil, fmt.Errorf("empty section header %q", line)
			}
			if _, ok := p.sections[name]; !ok {
				p.sections[name] = make(map[string]string)
			}
			current = p.sections[name]
			continue
		}
		if key, value, ok := strings.Cut(trimmed, "="); ok {
			if current == nil {
				return nil, fmt.Errorf("key %q before any section header", strings.TrimSpace(key))
			}
			// Strip any trailing comment from the value.
			value, _, _ = strings.Cut(value, "#")
			current[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// Has reports whether the given section and key exist.
func (p *Params) Has(section, key string) bool {
	sec, ok := p.sections[section]
	if !ok {
		return false
	}
	_, ok = sec[key]
	return ok
}

// Sections returns the names of all parsed sections.
func (p *Params) Sections() []string {
	names := make([]string, 0, len(p.sections))
	for name := range p.sections {
		names = append(names, name)
	}
	return names
}

// Get returns the raw string value for section/key.
func (p *Params) Get(section, key string) (string, error) {
	sec, ok := p.sections[section]
	if !ok {
		return "", fmt.Errorf("section %q not found", section)
	}
	val, ok := sec[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in section %q", key, section)
	}
	return val, nil
}

// Int returns the value for section/key parsed as an integer.
func (p *Params) Int(section, key string) (int, error) {
	val, err := p.Get(section, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parsing %s/%s as int: %w", section, key, err)
	}
	return n, nil
}

// Float returns the value for section/key parsed as a float.
func (p *Params) Float(section, key string) (float64, error) {
	val, err := p.Get(section, key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s/%s as float: %w", section, key, err)
	}
	return f, nil
}
