package scanning

import (
	"bytes"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("prepareImageData", func() {
	It("passes PNG data through untouched", func() {
		data := testPNG()
		out, err := prepareImageData(data, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(data))
	})

	It("converts JPEG to PNG", func() {
		out, err := prepareImageData(testJPEG(), " Image/JPEG ")
		Expect(err).NotTo(HaveOccurred())
		_, err = png.Decode(bytes.NewReader(out))
		Expect(err).NotTo(HaveOccurred())
	})

	It("ignores content type parameters", func() {
		data := testPNG()
		out, err := prepareImageData(data, "image/png; charset=binary")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(data))
	})

	It("treats a missing content type as an image to decode", func() {
		out, err := prepareImageData(testJPEG(), "")
		Expect(err).NotTo(HaveOccurred())
		Expect(out[:4]).To(Equal([]byte("\x89PNG")))
	})

	It("rejects empty input", func() {
		_, err := prepareImageData(nil, "image/png")
		Expect(err).To(HaveOccurred())
	})

	It("rejects data that is not an image", func() {
		_, err := prepareImageData([]byte("definitely not an image"), "image/jpeg")
		Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
	})
})

var _ = Describe("HEIC detection", func() {
	It("recognizes the ftyp brand", func() {
		header := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		Expect(isHEICFormat(header)).To(BeTrue())
		Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
		Expect(isHEICFormat(testPNG())).To(BeFalse())
	})

	It("recognizes HEIC and HEIF content types", func() {
		Expect(isHEICMimeType("image/heic")).To(BeTrue())
		Expect(isHEICMimeType("IMAGE/HEIF")).To(BeTrue())
		Expect(isHEICMimeType("image/jpeg")).To(BeFalse())
	})
})
