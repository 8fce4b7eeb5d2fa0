// Package icepanel provides a connector for IcePanel C4 architecture
// landscapes. Search matches model objects and diagrams of the latest
// landscape version by name and description.
package icepanel
