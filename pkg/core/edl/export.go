// Package edl renders edit decision lists into the interchange formats
// cutting tools ingest: JSON, FCPXML, CMX 3600, DaVinci Resolve XML and
// Premiere XML.
package edl

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"agentic_studio/pkg/models"
)

// FrameRate is the timeline rate used for CMX timecodes.
const FrameRate = 24

// ExportJSON serializes the whole EDL with every candidate.
func ExportJSON(e *models.EDL) ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// Timecode formats seconds as HH:MM:SS:FF at the project frame rate.
func Timecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalFrames := int(math.Round(seconds * FrameRate))
	frames := totalFrames % FrameRate
	totalSeconds := totalFrames / FrameRate
	return fmt.Sprintf("%02d:%02d:%02d:%02d",
		totalSeconds/3600, (totalSeconds/60)%60, totalSeconds%60, frames)
}

// ExportCMX3600 renders a candidate as a classic CMX 3600 EDL at 24 fps.
func ExportCMX3600(e *models.EDL, candidateID string) (string, error) {
	cand, err := findCandidate(e, candidateID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", cand.Name)
	b.WriteString("FCM: NON-DROP FRAME\n\n")
	for i, d := range cand.Decisions {
		fmt.Fprintf(&b, "%03d  AX       V     C        %s %s %s %s\n",
			i+1,
			Timecode(d.InPoint), Timecode(d.OutPoint),
			Timecode(d.StartTime), Timecode(d.StartTime+d.Duration))
		fmt.Fprintf(&b, "* FROM CLIP NAME: %s_v%d\n", d.SceneID, d.VariationID)
		if d.AudioURL != "" {
			fmt.Fprintf(&b, "* AUDIO: %s\n", d.AudioURL)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

type fcpClip struct {
	XMLName  xml.Name `xml:"asset-clip"`
	Name     string   `xml:"name,attr"`
	Ref      string   `xml:"ref,attr"`
	Offset   string   `xml:"offset,attr"`
	Duration string   `xml:"duration,attr"`
	Start    string   `xml:"start,attr"`
}

type fcpSpine struct {
	Clips []fcpClip `xml:"asset-clip"`
}

type fcpSequence struct {
	XMLName  xml.Name `xml:"sequence"`
	Duration string   `xml:"duration,attr"`
	Spine    fcpSpine `xml:"spine"`
}

type fcpxml struct {
	XMLName  xml.Name    `xml:"fcpxml"`
	Version  string      `xml:"version,attr"`
	Sequence fcpSequence `xml:"library>event>project>sequence"`
}

// ExportFCPXML renders a candidate as Final Cut Pro XML.
func ExportFCPXML(e *models.EDL, candidateID string) ([]byte, error) {
	cand, err := findCandidate(e, candidateID)
	if err != nil {
		return nil, err
	}

	doc := fcpxml{
		Version: "1.10",
		Sequence: fcpSequence{
			Duration: rational(cand.TotalDuration),
		},
	}
	for _, d := range cand.Decisions {
		doc.Sequence.Spine.Clips = append(doc.Sequence.Spine.Clips, fcpClip{
			Name:     fmt.Sprintf("%s_v%d", d.SceneID, d.VariationID),
			Ref:      d.VideoURL,
			Offset:   rational(d.StartTime),
			Duration: rational(d.Duration),
			Start:    rational(d.InPoint),
		})
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// rational renders seconds in FCPXML's frame-rational notation.
func rational(seconds float64) string {
	frames := int(math.Round(seconds * FrameRate))
	return fmt.Sprintf("%d/%ds", frames, FrameRate)
}

type xmlClipItem struct {
	XMLName xml.Name `xml:"clipitem"`
	Name    string   `xml:"name"`
	Start   int      `xml:"start"`
	End     int      `xml:"end"`
	In      int      `xml:"in"`
	Out     int      `xml:"out"`
	File    struct {
		PathURL string `xml:"pathurl"`
	} `xml:"file"`
}

type xmlTrack struct {
	ClipItems []xmlClipItem `xml:"clipitem"`
}

type xmlSequence struct {
	XMLName  xml.Name `xml:"sequence"`
	Name     string   `xml:"name"`
	Duration int      `xml:"duration"`
	Rate     struct {
		Timebase int `xml:"timebase"`
	} `xml:"rate"`
	Video xmlTrack `xml:"media>video>track"`
}

type xmeml struct {
	XMLName  xml.Name    `xml:"xmeml"`
	Version  string      `xml:"version,attr"`
	Sequence xmlSequence `xml:"sequence"`
}

// ExportPremiereXML renders a candidate as Premiere-flavored XMEML.
func ExportPremiereXML(e *models.EDL, candidateID string) ([]byte, error) {
	return exportXMEML(e, candidateID, "4")
}

// ExportDaVinciXML renders a candidate as Resolve-flavored XMEML. Resolve
// reads the same XMEML dialect at version 5.
func ExportDaVinciXML(e *models.EDL, candidateID string) ([]byte, error) {
	return exportXMEML(e, candidateID, "5")
}

func exportXMEML(e *models.EDL, candidateID, version string) ([]byte, error) {
	cand, err := findCandidate(e, candidateID)
	if err != nil {
		return nil, err
	}

	doc := xmeml{Version: version}
	doc.Sequence.Name = cand.Name
	doc.Sequence.Duration = frames(cand.TotalDuration)
	doc.Sequence.Rate.Timebase = FrameRate
	for _, d := range cand.Decisions {
		item := xmlClipItem{
			Name:  fmt.Sprintf("%s_v%d", d.SceneID, d.VariationID),
			Start: frames(d.StartTime),
			End:   frames(d.StartTime + d.Duration),
			In:    frames(d.InPoint),
			Out:   frames(d.OutPoint),
		}
		item.File.PathURL = d.VideoURL
		doc.Sequence.Video.ClipItems = append(doc.Sequence.Video.ClipItems, item)
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func frames(seconds float64) int {
	return int(math.Round(seconds * FrameRate))
}

func findCandidate(e *models.EDL, candidateID string) (*models.EditCandidate, error) {
	if candidateID == "" {
		candidateID = e.RecommendedCandidateID
	}
	for i := range e.Candidates {
		if e.Candidates[i].CandidateID == candidateID {
			return &e.Candidates[i], nil
		}
	}
	return nil, fmt.Errorf("candidate %q not in EDL %s", candidateID, e.EDLID)
}
