// Package locator resolves Maharashtra postal codes to their assembly
// constituency and elected MLA from static reference files.
package locator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

var (
	ErrInvalidPincode = errors.New("invalid pincode")
	ErrUnknownPincode = errors.New("unknown pincode")
)

const (
	unavailableName         = "MLA Info Unavailable"
	unknownConstituency     = "Unknown (District Found)"
	centralGrievancePortal  = "https://pgportal.gov.in/"
	stateGrievancePortal    = "https://aaplesarkar.mahaonline.gov.in/en"
	grievanceDisclaimerNote = "This is an MVP; data may not be fully accurate."
)

// Constituency is what a pincode resolves to.
type Constituency struct {
	District             string `json:"district"`
	State                string `json:"state"`
	AssemblyConstituency string `json:"assembly_constituency"`
}

// Representative is an MLA's public contact record.
type Representative struct {
	Name    string `json:"name"`
	Party   string `json:"party"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Twitter string `json:"twitter"`
}

// Available reports whether r is a real record rather than the
// placeholder used for unresolved constituencies.
func (r Representative) Available() bool {
	return r.Name != unavailableName
}

// GrievanceLinks points citizens at the public grievance portals.
type GrievanceLinks struct {
	CentralCPGRAMS    string `json:"central_cpgrams"`
	MaharashtraPortal string `json:"maharashtra_portal"`
	Note              string `json:"note"`
}

// Contacts is the composite answer for a pincode.
type Contacts struct {
	Pincode              string         `json:"pincode"`
	State                string         `json:"state"`
	District             string         `json:"district"`
	AssemblyConstituency string         `json:"assembly_constituency"`
	MLA                  Representative `json:"mla"`
	GrievanceLinks       GrievanceLinks `json:"grievance_links"`
	Description          string         `json:"description,omitempty"`
}

type pincodeRecord struct {
	Pincode string `json:"pincode"`
	Constituency
}

type mlaRecord struct {
	AssemblyConstituency string `json:"assembly_constituency"`
	MLAName              string `json:"mla_name"`
	Party                string `json:"party"`
	Phone                string `json:"phone"`
	Email                string `json:"email"`
	Twitter              string `json:"twitter"`
}

// Directory is the immutable lookup table. It is safe for concurrent use.
type Directory struct {
	byPincode      map[string]Constituency
	byConstituency map[string]Representative
	districts      []string
}

// Load reads the pincode and MLA files. On duplicate keys the first
// occurrence wins.
func Load(pincodePath, mlaPath string) (*Directory, error) {
	var pincodes []pincodeRecord
	if err := readJSON(pincodePath, &pincodes); err != nil {
		return nil, err
	}
	var mlas []mlaRecord
	if err := readJSON(mlaPath, &mlas); err != nil {
		return nil, err
	}
	return newDirectory(pincodes, mlas), nil
}

func newDirectory(pincodes []pincodeRecord, mlas []mlaRecord) *Directory {
	d := &Directory{
		byPincode:      make(map[string]Constituency, len(pincodes)),
		byConstituency: make(map[string]Representative, len(mlas)),
	}

	seenDistrict := map[string]bool{}
	for _, p := range pincodes {
		if p.Pincode == "" {
			continue
		}
		if _, ok := d.byPincode[p.Pincode]; !ok {
			d.byPincode[p.Pincode] = p.Constituency
		}
		if p.District != "" && !seenDistrict[p.District] {
			seenDistrict[p.District] = true
			d.districts = append(d.districts, p.District)
		}
	}
	sort.Strings(d.districts)

	for _, m := range mlas {
		if m.AssemblyConstituency == "" {
			continue
		}
		if _, ok := d.byConstituency[m.AssemblyConstituency]; ok {
			continue
		}
		d.byConstituency[m.AssemblyConstituency] = Representative{
			Name:    m.MLAName,
			Party:   m.Party,
			Phone:   m.Phone,
			Email:   m.Email,
			Twitter: m.Twitter,
		}
	}
	return d
}

func readJSON(path string, target any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ValidPincode reports whether s is exactly six ASCII digits.
func ValidPincode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FindConstituency looks up a pincode. Malformed input is never looked up.
func (d *Directory) FindConstituency(pincode string) (Constituency, bool) {
	if !ValidPincode(pincode) {
		return Constituency{}, false
	}
	c, ok := d.byPincode[pincode]
	return c, ok
}

// FindRepresentative looks up the MLA for a constituency name.
func (d *Directory) FindRepresentative(constituency string) (Representative, bool) {
	if constituency == "" {
		return Representative{}, false
	}
	r, ok := d.byConstituency[constituency]
	return r, ok
}

// Districts returns the distinct district names, sorted.
func (d *Directory) Districts() []string {
	out := make([]string, len(d.districts))
	copy(out, d.districts)
	return out
}

// Resolve maps a pincode to its constituency and MLA. An unresolved MLA
// yields a placeholder record instead of an error.
func (d *Directory) Resolve(pincode string) (Contacts, error) {
	if !ValidPincode(pincode) {
		return Contacts{}, ErrInvalidPincode
	}
	c, ok := d.FindConstituency(pincode)
	if !ok {
		return Contacts{}, ErrUnknownPincode
	}

	rep, found := d.FindRepresentative(c.AssemblyConstituency)
	if !found {
		rep = UnavailableRepresentative()
		if c.AssemblyConstituency == "" {
			c.AssemblyConstituency = unknownConstituency
		}
	}

	contacts := Contacts{
		Pincode:              pincode,
		State:                c.State,
		District:             c.District,
		AssemblyConstituency: c.AssemblyConstituency,
		MLA:                  rep,
		GrievanceLinks: GrievanceLinks{
			CentralCPGRAMS:    centralGrievancePortal,
			MaharashtraPortal: stateGrievancePortal,
			Note:              grievanceDisclaimerNote,
		},
	}
	if !found {
		contacts.Description = fmt.Sprintf("We found that %s belongs to %s district.", pincode, c.District)
	}
	return contacts, nil
}

// UnavailableRepresentative is the placeholder for an unresolved MLA.
func UnavailableRepresentative() Representative {
	return Representative{
		Name:    unavailableName,
		Party:   "N/A",
		Phone:   "N/A",
		Email:   "N/A",
		Twitter: "Not Available",
	}
}
