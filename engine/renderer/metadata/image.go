package metadata

/**
 * @brief A structure to hold decoded image data, always expanded
 * to 8-bit RGBA.
 */
type ImageResourceData struct {
	/** @brief The number of channels. */
	ChannelCount uint8
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The pixel data of the image, row-major, top row first. */
	Pixels []uint8
	/** @brief True when any pixel has alpha below 255. */
	HasTransparency bool
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
	/** @brief Indicates if the pixel data is sRGB encoded. */
	SRGB bool
}
