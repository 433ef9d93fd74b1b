package clusterpoints

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Linkage selects how hierarchical clustering measures the distance between
// two clusters. The zero value means no linkage was chosen.
type Linkage int

const (
	LinkageNone Linkage = iota
	// LinkageSLINK is single linkage computed with Sibson's SLINK algorithm.
	LinkageSLINK
	// The remaining linkages run through the Lance-Williams engine.
	LinkageSingle
	LinkageComplete
	LinkageMedian
	LinkageAverage
	LinkageWard
	LinkageCentroid
)

var linkageNames = map[Linkage]string{
	LinkageSLINK:    "slink",
	LinkageSingle:   "single",
	LinkageComplete: "complete",
	LinkageMedian:   "median",
	LinkageAverage:  "average",
	LinkageWard:     "ward",
	LinkageCentroid: "centroid",
}

// Linkages lists every selectable linkage in display order.
func Linkages() []Linkage {
	return []Linkage{
		LinkageSLINK, LinkageSingle, LinkageComplete, LinkageMedian,
		LinkageAverage, LinkageWard, LinkageCentroid,
	}
}

func (l Linkage) String() string {
	if name, ok := linkageNames[l]; ok {
		return name
	}
	if l == LinkageNone {
		return "none"
	}
	return "linkage(" + strconv.Itoa(int(l)) + ")"
}

// Valid reports whether l is one of the selectable linkages.
func (l Linkage) Valid() bool {
	_, ok := linkageNames[l]
	return ok
}

// LanceWilliams reports whether l runs through the Lance-Williams engine.
func (l Linkage) LanceWilliams() bool {
	return l.Valid() && l != LinkageSLINK
}

// ParseLinkage maps a linkage name to its Linkage. Matching ignores case and
// accepts a few common aliases ("wards", "single-slink", "unweighted-average").
func ParseLinkage(name string) (Linkage, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "":
		return LinkageNone, nil
	case "slink", "single-slink", "single_slink":
		return LinkageSLINK, nil
	case "single", "single-lw":
		return LinkageSingle, nil
	case "complete":
		return LinkageComplete, nil
	case "median":
		return LinkageMedian, nil
	case "average", "unweighted-average", "upgma":
		return LinkageAverage, nil
	case "ward", "wards", "ward's":
		return LinkageWard, nil
	case "centroid":
		return LinkageCentroid, nil
	}
	return LinkageNone, markConfig(errors.Wrapf(ErrUnknownLinkage, "%q", name))
}

// lwCoefficients are the Lance-Williams update weights:
//
//	d(l, i∪j) = αi·d(l,i) + αj·d(l,j) + β·d(i,j) + γ·|d(l,i) - d(l,j)|
type lwCoefficients struct {
	alphaI, alphaJ, beta, gamma float64
}

// coefficients returns the update weights for merging clusters of sizes si
// and sj, seen from a third cluster of size sl.
func (l Linkage) coefficients(si, sj, sl float64) lwCoefficients {
	sn := si + sj
	switch l {
	case LinkageSingle:
		return lwCoefficients{alphaI: 0.5, alphaJ: 0.5, gamma: -0.5}
	case LinkageComplete:
		return lwCoefficients{alphaI: 0.5, alphaJ: 0.5, gamma: 0.5}
	case LinkageMedian:
		return lwCoefficients{alphaI: 0.5, alphaJ: 0.5, beta: -0.25}
	case LinkageAverage:
		return lwCoefficients{alphaI: si / sn, alphaJ: sj / sn}
	case LinkageWard:
		return lwCoefficients{
			alphaI: (si + sl) / (sn + sl),
			alphaJ: (sj + sl) / (sn + sl),
			beta:   -sl / (sn + sl),
		}
	case LinkageCentroid:
		return lwCoefficients{
			alphaI: si / sn,
			alphaJ: sj / sn,
			beta:   -(si * sj) / (sn * sn),
		}
	}
	panic("clusterpoints: linkage " + l.String() + " has no Lance-Williams coefficients")
}

// update applies the recurrence to the pre-merge distances.
func (c lwCoefficients) update(dil, djl, dij float64) float64 {
	d := c.alphaI*dil + c.alphaJ*djl
	if c.beta != 0 {
		d += c.beta * dij
	}
	if c.gamma != 0 {
		d += c.gamma * math.Abs(dil-djl)
	}
	return d
}
