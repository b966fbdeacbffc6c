package binder

import "fmt"

func namespaceOpen(name string) string {
	return fmt.Sprintf("namespace %s{", name)
}

func classRegistration(name, bases string) string {
	if bases == "" {
		return fmt.Sprintf(`py::class_<%s>(m, "%s")`, name, name)
	}
	return fmt.Sprintf(`py::class_<%s, %s>(m, "%s")`, name, bases, name)
}

func defaultConstructor() string {
	return ".def(py::init<>())"
}

func constructor(params string) string {
	return fmt.Sprintf(".def(py::init<%s>())", params)
}

func readWriteField(owner, field string) string {
	return fmt.Sprintf(`.def_readwrite("%s", &%s::%s)`, field, owner, field)
}

// readOnlyArray exposes a fixed-size array through a getter. Writable
// arrays need an adaptor type that is not generated.
func readOnlyArray(owner, field string) string {
	return fmt.Sprintf(`.def_property_readonly("%s", [](%s& obj) {return obj.%s; })`, field, owner, field)
}

// method binds the zero-argument overload only.
func method(owner, name string) string {
	return fmt.Sprintf(`.def("%s", py::overload_cast<>(&%s::%s))`, name, owner, name)
}
