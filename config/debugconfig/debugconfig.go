/*
 * gsx - Debug options configuration.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package debugconfig wires a "DEBUG" config model into configparser that
// turns on named trace categories for the core components (CPU, VIDEO, IWM,
// DOC, ADB, RTC, SMARTPORT). Unlike the teacher's per-device debug hooks,
// gsx has no per-unit device table to dispatch into, so a category just
// collects a set of enabled trace keywords that components consult through
// Enabled.
package debugconfig

import (
	"errors"
	"strings"

	config "github.com/open-iigs/gsx/config/configparser"
)

var categories = map[string]map[string]bool{
	"CPU":       {},
	"VIDEO":     {},
	"IWM":       {},
	"DOC":       {},
	"ADB":       {},
	"RTC":       {},
	"SMARTPORT": {},
}

func init() {
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

// setDebug handles a line of the form "DEBUG <category> <keyword>...",
// e.g. "DEBUG IWM phase,shift" or "DEBUG CPU trace".
func setDebug(_ uint16, device string, options []config.Option) error {
	cat := strings.ToUpper(device)
	keywords, ok := categories[cat]
	if !ok {
		return errors.New("debug option invalid: " + device)
	}

	for _, opt := range options {
		keywords[strings.ToUpper(opt.Name)] = true
		if opt.EqualOpt != "" {
			keywords[strings.ToUpper(opt.EqualOpt)] = true
		}
		for _, v := range opt.Value {
			keywords[strings.ToUpper(*v)] = true
		}
	}
	return nil
}

// Enabled reports whether the given keyword was turned on for category by
// a "DEBUG <category> ..." config line.
func Enabled(category, keyword string) bool {
	keywords, ok := categories[strings.ToUpper(category)]
	if !ok {
		return false
	}
	return keywords[strings.ToUpper(keyword)]
}

// Reset clears every category's keyword set; exposed for test isolation.
func Reset() {
	for cat := range categories {
		categories[cat] = map[string]bool{}
	}
}
