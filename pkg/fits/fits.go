// Package fits implements a reduced FITS image container.
//
// Only the subset used by all-sky raster maps is supported: a single
// image header made of 80-byte ASCII cards, followed by a raster data
// block stored big-endian. Multi-extension files, compression and WCS
// conventions beyond what the skymap layer needs are out of scope.
package fits

const (
	// CardLen is the fixed width of a header card in bytes.
	CardLen = 80

	// CardsPerBlock is the number of cards in one header block.
	CardsPerBlock = 36

	// BlockSize is the FITS block size. Headers and data regions are
	// always padded on disk to a multiple of this.
	BlockSize = CardLen * CardsPerBlock // 2880
)

// Well-known card labels.
const (
	LabelSimple = "SIMPLE"
	LabelBitpix = "BITPIX"
	LabelNaxis  = "NAXIS"
	LabelBscale = "BSCALE"
	LabelBzero  = "BZERO"
	LabelEnd    = "END"

	LabelCtype1  = "CTYPE1"
	LabelCtype2  = "CTYPE2"
	LabelCrval1  = "CRVAL1"
	LabelCrval2  = "CRVAL2"
	LabelCrpix1  = "CRPIX1"
	LabelCrpix2  = "CRPIX2"
	LabelCdelt1  = "CDELT1"
	LabelCdelt2  = "CDELT2"
	LabelCD1_1   = "CD1_1"
	LabelCD1_2   = "CD1_2"
	LabelCD2_1   = "CD2_1"
	LabelCD2_2   = "CD2_2"
	LabelLonpole = "LONPOLE"

	// Custom polar projection keys.
	LabelLamNSGP = "LAM_NSGP"
	LabelLamScal = "LAM_SCAL"
)
