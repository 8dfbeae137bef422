// Package adapter holds the pieces shared by every client factory: the
// untyped configuration Section handed over by the container, the merge of
// defaults with caller supplied overrides (optionally preceded by
// environment-derived overrides), and the error types adapters return.
//
// A typical adapter resolves its effective configuration first and then
// decodes it into a typed parameter struct:
//
//	sec := adapter.Resolve(defaults, overrides, os.LookupEnv, adapter.URLOverride("REDIS_URL"))
//	var p Params
//	if err := factory.Decode(sec, &p); err != nil {
//	    return nil, err
//	}
package adapter
