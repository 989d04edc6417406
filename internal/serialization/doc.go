// Package serialization holds the file-level plumbing shared by the model
// loaders: memory-mapped read-only access to model files, SHA-256
// fingerprints, and validation of the regions and names a model declares.
//
// Example usage:
//
//	f, err := serialization.OpenMapped("model.nnc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	regions := []serialization.Region{{Name: "npu_bin", Offset: 128, Size: 4096}}
//	if err := serialization.ValidateRegions(regions, f.Size()); err != nil {
//	    log.Fatal(err)
//	}
package serialization
