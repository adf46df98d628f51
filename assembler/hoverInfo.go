package assembler

type hoverInfoFormatsType struct {
	labelDefinition    string
	labelReference     string
	constantDefinition string
	constantReference  string
	integerLiteral     string
	instruction        string
	encodedInstruction string
	encodedFields      string

	// registers
	lowRegister     string
	upperRegister   string
	pointerRegister string
	pointerOperand  string
}

var hoverInfoFormats = hoverInfoFormatsType{
	labelDefinition:    "Definition of label `%s`.\n\nAddress 0x%X (word)",
	labelReference:     "Reference to label `%s`\n\nEvaluates to `%d` (`0x%X`)",
	constantDefinition: "Definition of constant `%s`.\n\nValue `%d` (`0x%X`)",
	constantReference:  "Constant `%s`\n\nEvaluates to `%d` (`0x%X`)",
	integerLiteral:     "Integer Literal `%d` (`0x%X`, `0b%s`)",
	instruction:        "**%s** - %s\n\n```avr\n%s\n```",
	encodedInstruction: "\n\nEncoded as `%s` at 0x%X",
	encodedFields:      "\n\nFields: %s",

	lowRegister:     "Register `r%d`. 8-Bit General Purpose Register",
	upperRegister:   "Register `r%d`. 8-Bit General Purpose Register, usable with immediate instructions",
	pointerRegister: "Register `r%d`. 8-Bit General Purpose Register, %s byte of the `%s` pointer",
	pointerOperand:  "Pointer `%s` (`r%d:r%d`)%s",
}
