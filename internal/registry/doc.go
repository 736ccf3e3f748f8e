// Package registry installs components from the remote component library.
//
// Components are distributed as source files that developers copy into
// their projects and own completely. Installing a component:
//
//   - validates the name
//   - installs the npm packages the component imports
//   - fetches and writes the component file, then its optional stylesheet
//   - adds the file to the Tailwind content list
//
// Init bootstraps a project with the shared class-merge utility, the global
// stylesheet, every package any component needs, and a content glob that
// covers the whole components directory.
//
// # Library Layout
//
// The library serves four kinds of files relative to its base:
//
//	components/<name>.tsx
//	styles/<name>.css
//	utils/cn_tw_merger.ts
//	app/globals.css
//
// # Usage
//
//	cfg, _ := config.LoadFromWorkingDir()
//	reg, _ := registry.New(cfg)
//
//	// Install a component
//	res, err := reg.Install(ctx, "button")
//
//	// Bootstrap the project
//	res, err = reg.Init(ctx)
package registry
