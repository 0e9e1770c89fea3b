package cwidget

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// TappableImage shows a bitmap scaled to fit and reports taps.
type TappableImage struct {
	widget.BaseWidget

	image *canvas.Image

	OnTapped func()
}

func NewTappableImage(minSize fyne.Size, onTapped func()) *TappableImage {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(minSize)

	item := &TappableImage{
		image:    img,
		OnTapped: onTapped,
	}
	item.ExtendBaseWidget(item)

	return item
}

func (item *TappableImage) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(item.image)
}

func (item *TappableImage) Tapped(_ *fyne.PointEvent) {
	if item.OnTapped != nil {
		item.OnTapped()
	}
}

func (item *TappableImage) SetImage(img image.Image) {
	item.image.Image = img
	item.image.Refresh()
}

func (item *TappableImage) Image() image.Image {
	return item.image.Image
}
