// internal/unitid/doc.go

/*
Package unitid provides a structured identifier for every unit of work the
core dispatches: native components, legacy drivers and firmware volume
images.

The canonical format is `kind.name`, for example `component.platform.Init`
or `driver.8c8ce578-8a3d-4f1c-9935-896185c32dd3`. Only the first dot
separates the kind; the name may contain further dots.
*/
package unitid
