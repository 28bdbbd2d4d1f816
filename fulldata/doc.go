// Package fulldata maps the FullData table onto Section values.
//
// Each row carries four independently compressed payloads: the data point
// columns, the per-column world generation steps, the per-column world
// compression modes and the id mapping. Mapper keeps them compressed; a
// Section decodes each payload the first time it is needed, and can be
// mutated, recompressed and written back with Store.Insert.
//
//	store, err := fulldata.Open(ctx, "DistantHorizons.sqlite", fulldata.WithReadOnly(true))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	sections, err := store.All(ctx)
//	for _, s := range sections {
//	    points, err := s.Points(0, 0)
//	    ...
//	}
package fulldata
