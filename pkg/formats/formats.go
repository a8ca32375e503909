// Package formats provides parsers for exported game-world files: OBJ
// geometry with numbered UV channels, its MTL material library, terrain
// blend descriptors and the ';'-separated model placement tables.
package formats
