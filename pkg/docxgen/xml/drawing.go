package xml

import (
	"encoding/xml"
	"fmt"
)

// EMUsPerPixel converts 96-DPI pixels to English Metric Units.
const EMUsPerPixel = 9525

// MaxExtentEMU is the largest value a wp:extent coordinate may hold.
const MaxExtentEMU = 27273042316900

// PixelsToEMU converts a pixel length to EMUs, clamped to MaxExtentEMU.
func PixelsToEMU(px uint32) int64 {
	return min(int64(px)*EMUsPerPixel, MaxExtentEMU)
}

// Drawing is an inline picture anchored in a run. It references its binary
// part through a relationship ID from word/_rels/document.xml.rels.
type Drawing struct {
	// ID is the document-unique drawing object id (wp:docPr/@id)
	ID int
	// Name is the picture name shown by Word, usually the media file name
	Name string
	// RelID is the r:embed relationship ID of the image part
	RelID string
	// Width and Height are in EMU
	Width  int64
	Height int64
}

func (d *Drawing) isRunContent() {}

type drawingInline struct {
	XMLName      xml.Name       `xml:"wp:inline"`
	DistT        int            `xml:"distT,attr"`
	DistB        int            `xml:"distB,attr"`
	DistL        int            `xml:"distL,attr"`
	DistR        int            `xml:"distR,attr"`
	Extent       drawingExtent  `xml:"wp:extent"`
	EffectExtent effectExtent   `xml:"wp:effectExtent"`
	DocPr        nonVisualProps `xml:"wp:docPr"`
	FramePr      graphicFramePr `xml:"wp:cNvGraphicFramePr"`
	Graphic      graphic        `xml:"a:graphic"`
}

type drawingExtent struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type effectExtent struct {
	L int `xml:"l,attr"`
	T int `xml:"t,attr"`
	R int `xml:"r,attr"`
	B int `xml:"b,attr"`
}

type nonVisualProps struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type graphicFramePr struct {
	Locks graphicFrameLocks `xml:"a:graphicFrameLocks"`
}

type graphicFrameLocks struct {
	NoChangeAspect int `xml:"noChangeAspect,attr"`
}

type graphic struct {
	Data graphicData `xml:"a:graphicData"`
}

type graphicData struct {
	URI string  `xml:"uri,attr"`
	Pic picture `xml:"pic:pic"`
}

type picture struct {
	NvPicPr  pictureNonVisual `xml:"pic:nvPicPr"`
	BlipFill blipFill         `xml:"pic:blipFill"`
	SpPr     shapeProps       `xml:"pic:spPr"`
}

type pictureNonVisual struct {
	CNvPr    nonVisualProps `xml:"pic:cNvPr"`
	CNvPicPr struct{}       `xml:"pic:cNvPicPr"`
}

type blipFill struct {
	Blip    blip    `xml:"a:blip"`
	Stretch stretch `xml:"a:stretch"`
}

type blip struct {
	Embed string `xml:"r:embed,attr"`
}

type stretch struct {
	FillRect struct{} `xml:"a:fillRect"`
}

type shapeProps struct {
	Xfrm     transform   `xml:"a:xfrm"`
	PrstGeom presetShape `xml:"a:prstGeom"`
}

type transform struct {
	Off offset        `xml:"a:off"`
	Ext drawingExtent `xml:"a:ext"`
}

type offset struct {
	X int `xml:"x,attr"`
	Y int `xml:"y,attr"`
}

type presetShape struct {
	Prst  string   `xml:"prst,attr"`
	AvLst struct{} `xml:"a:avLst"`
}

// MarshalXML writes w:drawing with a wp:inline picture
func (d Drawing) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:drawing"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	ext := drawingExtent{CX: d.Width, CY: d.Height}
	inline := drawingInline{
		Extent:  ext,
		DocPr:   nonVisualProps{ID: d.ID, Name: fmt.Sprintf("Picture %d", d.ID)},
		FramePr: graphicFramePr{Locks: graphicFrameLocks{NoChangeAspect: 1}},
		Graphic: graphic{Data: graphicData{
			URI: NamespacePic,
			Pic: picture{
				NvPicPr:  pictureNonVisual{CNvPr: nonVisualProps{ID: 0, Name: d.Name}},
				BlipFill: blipFill{Blip: blip{Embed: d.RelID}},
				SpPr: shapeProps{
					Xfrm:     transform{Ext: ext},
					PrstGeom: presetShape{Prst: "rect"},
				},
			},
		}},
	}
	if err := e.Encode(inline); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}
