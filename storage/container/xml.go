// Copyright 2023 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package container

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/gorse-io/ml2h5/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

type xmlContainer struct {
	XMLName    xml.Name       `xml:"Container"`
	Version    string         `xml:"version,attr"`
	Attributes []xmlAttribute `xml:"Attribute"`
	Groups     []xmlGroup     `xml:"Group"`
}

type xmlAttribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type xmlGroup struct {
	Name     string       `xml:"name,attr"`
	Datasets []xmlDataset `xml:"Dataset"`
}

type xmlDataset struct {
	Name   string   `xml:"name,attr"`
	Type   string   `xml:"type,attr"`
	Shape  string   `xml:"shape,attr"`
	Dims   string   `xml:"dims,attr,omitempty"`
	Values []string `xml:"Value,omitempty"`
	Data   string   `xml:"Data,omitempty"`
}

// DumpXML writes the whole container as an XML document.
func (c *Container) DumpXML(w io.Writer) error {
	doc := xmlContainer{Version: Version}
	names, values, err := c.Attrs()
	if err != nil {
		return errors.Trace(err)
	}
	for i := range names {
		doc.Attributes = append(doc.Attributes, xmlAttribute{Name: names[i], Value: values[i]})
	}
	groups, err := c.Groups()
	if err != nil {
		return errors.Trace(err)
	}
	for _, group := range groups {
		keys, err := c.Keys(group)
		if err != nil {
			return errors.Trace(err)
		}
		g := xmlGroup{Name: group}
		for _, key := range keys {
			e, err := c.Get(group, key)
			if err != nil {
				return errors.Trace(err)
			}
			g.Datasets = append(g.Datasets, toXML(key, e))
		}
		doc.Groups = append(doc.Groups, g)
	}
	if _, err = io.WriteString(w, xml.Header); err != nil {
		return errors.Trace(err)
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err = encoder.Encode(doc); err != nil {
		return errors.Trace(err)
	}
	_, err = io.WriteString(w, "\n")
	return errors.Trace(err)
}

func joinInts(values []int) string {
	return strings.Join(lo.Map(values, func(n int, _ int) string { return strconv.Itoa(n) }), " ")
}

func toXML(key string, e *Entry) xmlDataset {
	d := xmlDataset{
		Name:  key,
		Type:  e.Type,
		Shape: joinInts(e.Shape),
		Dims:  joinInts(e.Dims),
	}
	switch e.Type {
	case TypeInt32, TypeInt64:
		d.Data = strings.Join(lo.Map(e.Ints, func(v int64, _ int) string { return strconv.FormatInt(v, 10) }), " ")
	case TypeFloat64:
		d.Data = strings.Join(lo.Map(e.Floats, func(v float64, _ int) string { return base.FormatFloat(v) }), " ")
	default:
		d.Values = e.Strings
	}
	return d
}
