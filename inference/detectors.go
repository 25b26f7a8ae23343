package inference

// Detector is a named label configuration applied to the shared
// zero-shot classifier. Positive is a strict subset of Labels; the other
// labels only give the classifier something to contrast against.
type Detector struct {
	Name     string
	Labels   []string
	Positive []string
}

func (d Detector) isPositive(label string) bool {
	for _, p := range d.Positive {
		if p == label {
			return true
		}
	}
	return false
}

var detectors = []Detector{
	{
		Name:     "pothole",
		Labels:   []string{"pothole", "cracked road", "damaged road surface", "smooth road", "normal street"},
		Positive: []string{"pothole", "cracked road", "damaged road surface"},
	},
	{
		Name:     "garbage",
		Labels:   []string{"garbage pile", "overflowing trash bin", "litter on street", "clean street", "empty sidewalk"},
		Positive: []string{"garbage pile", "overflowing trash bin", "litter on street"},
	},
	{
		Name:     "vandalism",
		Labels:   []string{"graffiti", "vandalism", "broken window", "damaged public property", "clean wall", "normal street"},
		Positive: []string{"graffiti", "vandalism", "broken window", "damaged public property"},
	},
	{
		Name:     "flooding",
		Labels:   []string{"flooded street", "waterlogging", "heavy rain", "submerged car", "dry road", "normal street"},
		Positive: []string{"flooded street", "waterlogging", "submerged car"},
	},
	{
		Name:     "fire",
		Labels:   []string{"fire", "smoke", "burning building", "burning vehicle", "normal street", "clear sky"},
		Positive: []string{"fire", "smoke", "burning building", "burning vehicle"},
	},
	{
		Name:     "stray-animal",
		Labels:   []string{"stray dog", "stray cow", "stray cat", "animal on road", "empty street", "pet on leash"},
		Positive: []string{"stray dog", "stray cow", "stray cat", "animal on road"},
	},
	{
		Name:     "infrastructure",
		Labels:   []string{"broken streetlight", "damaged bridge", "collapsed wall", "damaged traffic sign", "exposed electrical wires", "intact infrastructure", "normal street"},
		Positive: []string{"broken streetlight", "damaged bridge", "collapsed wall", "damaged traffic sign", "exposed electrical wires"},
	},
	{
		Name:     "traffic",
		Labels:   []string{"illegal parking", "wrong way driving", "signal jumping", "riding without helmet", "normal traffic", "empty road"},
		Positive: []string{"illegal parking", "wrong way driving", "signal jumping", "riding without helmet"},
	},
}

// Lookup returns the detector registered under name.
func Lookup(name string) (Detector, bool) {
	for _, d := range detectors {
		if d.Name == name {
			return d, true
		}
	}
	return Detector{}, false
}

// Detectors lists every registered detector.
func Detectors() []Detector {
	out := make([]Detector, len(detectors))
	copy(out, detectors)
	return out
}
