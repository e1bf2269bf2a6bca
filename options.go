package hanmaru

import "context"

// ConvertOptions holds configuration for document conversion.
type ConvertOptions struct {
	ctx           context.Context
	password      string
	keepUnknown   bool
	noFrontMatter bool
	assetDir      string
	sections      []int
}

// defaultOptions returns the default conversion options.
func defaultOptions() ConvertOptions {
	return ConvertOptions{
		ctx:      context.Background(),
		assetDir: "assets",
	}
}

// clone creates a copy of ConvertOptions.
func (o ConvertOptions) clone() ConvertOptions {
	return ConvertOptions{
		ctx:           o.ctx,
		password:      o.password,
		keepUnknown:   o.keepUnknown,
		noFrontMatter: o.noFrontMatter,
		assetDir:      o.assetDir,
		sections:      append([]int(nil), o.sections...),
	}
}
