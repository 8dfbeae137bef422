// Package factory provides a small generic registry of named entries and the
// decoding helper used to turn raw configuration maps into typed parameter
// structs. Entries are usually constructor functions.
//
// Example usage:
//
//	reg := factory.NewRegistry[factory.Factory[io.Reader]]()
//	reg.Register("file", func(conf map[string]any) (io.Reader, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return os.Open(c.Path)
//	})
//	r, err := factory.Create(reg, factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": "foo"}})
package factory
