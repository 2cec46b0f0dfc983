// Package factory provides a small generic registry used to instantiate
// pluggable modules, such as metrics sinks and snapshot publishers, from
// configuration. A module is described by a type string and a map of raw
// settings that its factory decodes into a typed struct.
//
//	reg := factory.NewRegistry[Publisher]()
//	reg.Register("mqtt", func(conf map[string]any) (Publisher, error) {
//	    var c struct{ Broker string `json:"broker"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newMQTTPublisher(c.Broker)
//	})
package factory
