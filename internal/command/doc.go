// Package command invokes named commands.
//
// Menus run bindings through an Executor. Registry is the executor used by
// the application: it maps names to Go handlers, recovers handler panics,
// and stores the values set through the setContext command. LuaCommands
// adds handlers defined by a Lua script.
package command
